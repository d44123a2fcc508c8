package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/pulsein/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"captureState": func(paused bool) string {
		if paused {
			return "PAUSED"
		}
		return "CAPTURING"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>pulsein</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.capturing { color: green; font-weight: bold; }
.paused { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>pulsein</h1>
<table>
<tr><th>State</th><td class="{{if .Paused}}paused{{else}}capturing{{end}}">{{captureState .Paused}}</td></tr>
<tr><th>Buffered pulses</th><td>{{.BufferLen}} / {{.Config.Capacity}}</td></tr>
<tr><th>Recorded total</th><td>{{.Recorded}}</td></tr>
<tr><th>Line</th><td>{{.Config.Chip}}:{{.Config.Offset}}{{if .Config.ActiveLow}} (active-low){{end}}</td></tr>
<tr><th>Clock</th><td>{{if .Config.CoarseClock}}calibrated ticks{{else}}wall clock{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Broker</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{.Config.Broker}}</td></tr>
<tr><th>Topic base</th><td>{{.Config.TopicBase}}</td></tr>
</table>
<p><a href="/index.json">json</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render template: %v", err)
	}
}
