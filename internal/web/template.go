package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lisas/alsd/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Ambient Light Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>Ambient Light Sensor</h1>

<table>
<tr><th>Last reading</th><td>
{{- if .Last -}}
{{ .Last.Value }} <span class="muted">at {{ rfc3339 .Last.Timestamp }}</span>
{{- else -}}
<span class="muted">none yet</span>
{{- end -}}
</td></tr>
<tr><th>Uptime</th><td>{{ uptime .Uptime }}</td></tr>
<tr><th>Cycles</th><td>{{ .Cycles }}</td></tr>
<tr><th>Published</th><td>{{ .Counts.Published }}</td></tr>
<tr><th>Undetectable</th><td>{{ .Counts.Undetectable }}</td></tr>
<tr><th>Read errors</th><td>{{ .Counts.ReadErrors }}</td></tr>
<tr><th>Publish errors</th><td>{{ .Counts.PublishErrors }}</td></tr>
<tr><th>MQTT</th><td>
{{- if .MQTTConnected -}}
<span class="connected">connected</span>
{{- else -}}
<span class="disconnected">disconnected</span>
{{- end -}}
 <span class="muted">{{ .Config.Broker }}</span></td></tr>
<tr><th>Topic</th><td>{{ .Config.Topic }}</td></tr>
<tr><th>Device</th><td>{{ .Config.Device }} <span class="muted">({{ .Config.Backend }})</span></td></tr>
<tr><th>Period</th><td>{{ .Config.PeriodMs }} ms <span class="muted">(rate {{ .Config.RateMs }} ms + settle)</span></td></tr>
</table>

{{ if .Recent }}
<h1>Recent readings</h1>
<table>
<tr><th>Time</th><th>Charge time</th></tr>
{{ range .Recent }}
<tr><td>{{ rfc3339 .Timestamp }}</td><td>{{ .Value }}</td></tr>
{{ end }}
</table>
{{ end }}

<p class="muted">Higher charge time means less ambient light.</p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Error().Err(err).Msg("render status page")
	}
}
