// Package listings scrapes the films currently showing in a city.
//
// The comingsoon.it provider runs up to four extraction passes over the city
// page (film containers, headings, /film/ links and poster alt text) and
// merges the titles they find. Order is stable: methods run in a fixed order
// and the first occurrence of each case-folded title wins.
package listings
