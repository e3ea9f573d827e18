package notifications

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }
    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }
    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1f2937 0%, #7f1d1d 100%);
      color: #ffffff;
      font-size: 20px;
      font-weight: 700;
    }
    .section { padding: 16px 24px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th { text-align: left; color: #6b7280; font-weight: 600; padding: 6px 4px; border-bottom: 1px solid #e5e7eb; }
    td { padding: 6px 4px; border-bottom: 1px solid #f3f4f6; vertical-align: top; }
    .score { white-space: nowrap; color: #065f46; font-weight: 600; }
    .alt { color: #6b7280; font-size: 12px; }
    .footer { padding: 12px 24px; color: #9ca3af; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">{{.Title}}</div>
    {{- if and .Summary .Summary.Matches}}
    <div class="section">
      <table>
        <tr><th>Watchlist</th><th>Showing</th><th>Score</th></tr>
        {{- range .Summary.Matches}}
        <tr>
          <td>{{.Entry.Title}}{{if and .MatchedTitle (ne .MatchedTitle .Entry.Title)}}<div class="alt">via {{.MatchedTitle}}</div>{{end}}</td>
          <td>{{if .Listing.SourceURL}}<a href="{{.Listing.SourceURL}}">{{.Listing.Title}}</a>{{else}}{{.Listing.Title}}{{end}}</td>
          <td class="score">{{score .Score}}</td>
        </tr>
        {{- end}}
      </table>
    </div>
    {{- else}}
    <div class="section">{{.Text}}</div>
    {{- end}}
    {{- with .Summary}}
    <div class="footer">
      {{.WatchlistCount}} watchlist films checked against {{.ListingCount}} listings{{if .ListingsURL}} from <a href="{{.ListingsURL}}">{{.ListingsURL}}</a>{{end}}.
    </div>
    {{- end}}
  </div>
</body>
</html>
`
