package edition

import "html/template"

// editionTemplate lays out one day's articles for the website's PDF renderer.
var editionTemplate = template.Must(template.New("edition").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>The Goonzette — Daily Edition {{.Date}}</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 0 auto; padding: 2rem; }
header { text-align: center; border-bottom: 3px double #000; margin-bottom: 2rem; }
h1 { margin-bottom: 0; }
article { page-break-after: always; margin-bottom: 3rem; }
.byline { color: #555; font-style: italic; margin-bottom: 1rem; }
.topic { text-transform: uppercase; font-size: 0.8rem; letter-spacing: 0.1em; }
</style>
</head>
<body>
<header>
<h1>The Goonzette</h1>
<p>Daily Edition — {{.Date}}</p>
</header>
{{range .Articles}}
<article>
<p class="topic">{{.Topic}}</p>
<h2>{{.Title}}</h2>
<p class="byline">by {{.AuthorName}}</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}
</article>
{{end}}
</body>
</html>
`))

type editionData struct {
	Date     string
	Articles []editionArticle
}

type editionArticle struct {
	Topic      string
	Title      string
	AuthorName string
	Paragraphs []string
}
