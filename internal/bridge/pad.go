package bridge

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

// PadPage is the page a phone opens to become a sensor pad. It connects to
// wsPath and sends motion, audio and face readings rateHz times a second.
func PadPage(title, wsPath string, rateHz int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		parts := []string{
			`<!doctype html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1, user-scalable=no">`,
			`<title>`, templ.EscapeString(title), `</title>`,
			`<style>`, padStyle, `</style></head>`,
			`<body data-ws="`, templ.EscapeString(wsPath), `" data-rate="`, strconv.Itoa(rateHz), `">`,
			`<h1>`, templ.EscapeString(title), `</h1>`,
			`<p id="status">tap start, then play in the terminal</p>`,
			`<button id="start">Start sensors</button>`,
			`<button id="mouth">Hold: mouth open</button>`,
			`<div id="meter"><div id="level"></div></div>`,
			`<script>`, padScript, `</script></body></html>`,
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}

const padStyle = `
body { font-family: system-ui, sans-serif; background: #111; color: #eee; text-align: center; margin: 0; padding: 1.5rem; }
button { display: block; width: 100%; margin: 1rem 0; padding: 1.5rem; font-size: 1.3rem; border: 0; border-radius: 1rem; background: #c04a7a; color: #fff; }
#mouth { background: #3a7bd5; touch-action: none; }
#mouth.open { background: #f5a623; }
#meter { height: 1rem; background: #333; border-radius: .5rem; overflow: hidden; }
#level { height: 100%; width: 0; background: #6c6; }
`

const padScript = `
const body = document.body;
const rate = Number(body.dataset.rate) || 25;
const status = document.getElementById('status');
const mouth = document.getElementById('mouth');
const level = document.getElementById('level');
const G = 9.81, RAD = Math.PI / 180;
let ws = null, motion = null, audio = null, jaw = 0;

function send(t, p) {
  if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify({ t: t, p: p }));
}

function connect() {
  const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  ws = new WebSocket(scheme + location.host + body.dataset.ws);
  ws.onopen = function () { send('hello', { v: 1, name: navigator.userAgent.slice(0, 48) }); };
  ws.onclose = function () { status.textContent = 'disconnected, reload to retry'; };
  ws.onmessage = function (e) {
    const m = JSON.parse(e.data);
    if (m.t === 'welcome') status.textContent = 'connected as ' + m.p.client.slice(0, 8);
  };
}

function onMotion(e) {
  const ag = e.accelerationIncludingGravity || {};
  const a = e.acceleration || {};
  const r = e.rotationRate || {};
  const gx = (ag.x || 0) - (a.x || 0), gy = (ag.y || 0) - (a.y || 0), gz = (ag.z || 0) - (a.z || 0);
  motion = {
    gravity: { x: gx / G, y: gy / G, z: gz / G },
    rotation: { x: (r.beta || 0) * RAD, y: (r.gamma || 0) * RAD, z: (r.alpha || 0) * RAD },
    acceleration: { x: (ag.x || 0) / G, y: (ag.y || 0) / G, z: (ag.z || 0) / G }
  };
}

async function startMic() {
  const stream = await navigator.mediaDevices.getUserMedia({ audio: true });
  const ctx = new AudioContext();
  const analyser = ctx.createAnalyser();
  analyser.fftSize = 1024;
  ctx.createMediaStreamSource(stream).connect(analyser);
  const buf = new Float32Array(analyser.fftSize);
  setInterval(function () {
    analyser.getFloatTimeDomainData(buf);
    let sum = 0;
    for (let i = 0; i < buf.length; i++) sum += buf[i] * buf[i];
    const rms = Math.min(1, Math.sqrt(sum / buf.length));
    const db = rms > 0 ? Math.max(-160, 20 * Math.log10(rms)) : -160;
    audio = { rms: rms, db: db };
    level.style.width = Math.round(Math.max(0, Math.min(1, (db + 50) / 50)) * 100) + '%';
  }, 1000 / rate);
}

function setJaw(v) {
  jaw = v;
  mouth.classList.toggle('open', v > 0);
}
mouth.addEventListener('pointerdown', function () { setJaw(1); });
mouth.addEventListener('pointerup', function () { setJaw(0); });
mouth.addEventListener('pointerleave', function () { setJaw(0); });

document.getElementById('start').addEventListener('click', async function () {
  this.disabled = true;
  if (typeof DeviceMotionEvent !== 'undefined' && DeviceMotionEvent.requestPermission) {
    try { await DeviceMotionEvent.requestPermission(); } catch (_) {}
  }
  window.addEventListener('devicemotion', onMotion);
  try { await startMic(); } catch (err) { status.textContent = 'no microphone: ' + err; }
  connect();
  setInterval(function () {
    if (motion) send('motion', motion);
    if (audio) send('audio', audio);
    send('face', { jaw: jaw });
  }, 1000 / rate);
});
`
