package api

const templates = `
{{define "docs"}}<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({url: "{{.DocURL}}", dom_id: "#swagger-ui"});
</script>
</body>
</html>{{end}}

{{define "index"}}<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>Prévision du nombre de victimes d'accidents de la route</h1>
<form action="/dashboard/forecast" method="get">
<label>Variable
<select name="series">
{{range .Keys}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
</label>
<label>Jours
<input type="number" name="days" min="1" max="{{.MaxDays}}" value="{{.Days}}">
</label>
<button type="submit">Prévoir</button>
</form>
<ul>
{{range .Keys}}<li><a href="/dashboard/forecast?series={{.}}&days={{$.Days}}">{{.}}</a>
<a href="/dashboard/history?series={{.}}">historique</a></li>
{{end}}</ul>
<p><a href="/dashboard/history/csv">Télécharger les données (CSV)</a></p>
</body>
</html>{{end}}
`
