package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
	"github.com/sweeney/ir-remote/internal/status"
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
	"fingerprint": logic.FormatFingerprint,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>IR Remote</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.button { font-weight: bold; }
.held { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>IR Remote<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Last Button</h2>
<table>
<tr><th>Button</th><td id="last-button" class="button">{{if .HasEvent}}{{.LastEvent.Button}}{{else}}none{{end}}</td></tr>
<tr><th>Firing</th><td id="last-firing" class="{{if .LastEvent.Held}}held{{end}}">{{if .HasEvent}}{{.LastEvent.Firing}}{{if .LastEvent.Held}} (held){{end}}{{end}}</td></tr>
<tr><th>Fingerprint</th><td id="last-fingerprint">{{if .HasEvent}}{{fingerprint .LastEvent.Fingerprint}}{{end}}</td></tr>
</table>

<h2>Buttons</h2>
<table>
{{range .Buttons}}<tr><th>{{.Name}}</th><td id="count-{{.Name}}">{{.Count}}</td></tr>
{{end}}<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Repeats</th><td>{{.Counts.Repeats}}</td></tr>
<tr><th>Suppressed</th><td>{{.Counts.Suppressed}}</td></tr>
</table>

<h2>Decoder</h2>
<table>
<tr><th>Summary</th><td>{{.Decoder.String}}</td></tr>
<tr><th>Noise</th><td>{{.Decoder.Noise}}</td></tr>
<tr><th>Unknown</th><td>{{.Decoder.Unknown}}</td></tr>
<tr><th>Stale</th><td>{{.Decoder.Stale}}</td></tr>
<tr><th>Overflows</th><td>{{.Decoder.Overflows}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Input</th><td>{{.Config.Chip}} line {{.Config.Pin}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Calibrated</th><td>{{.Config.Buttons}} fingerprints</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var buttonEl = document.getElementById("last-button");
  var firingEl = document.getElementById("last-firing");
  var fpEl = document.getElementById("last-fingerprint");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(e) {
      try {
        var msg = JSON.parse(e.data);
        if (!msg.remote) { return; }
        buttonEl.textContent = msg.remote.button;
        firingEl.textContent = msg.remote.firing + (msg.remote.held ? " (held)" : "");
        firingEl.className = msg.remote.held ? "held" : "";
        fpEl.textContent = msg.remote.fingerprint;
        var countEl = document.getElementById("count-" + msg.remote.button);
        if (countEl) { countEl.textContent = parseInt(countEl.textContent, 10) + 1; }
      } catch (err) {}
    };
  }

  connect();
})();
</script>
</body>
</html>
`

type buttonCount struct {
	Name  string
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	buttons := make([]buttonCount, 0, len(logic.Buttons))
	for _, b := range logic.Buttons {
		buttons = append(buttons, buttonCount{Name: string(b), Count: snap.Counts.PerButton[b]})
	}
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Buttons []buttonCount
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Buttons:  buttons,
	}
	indexTmpl.Execute(w, data)
}
