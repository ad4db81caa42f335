// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package relay

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeranaias/stagehand/internal/synclient"
)

// handleJoinPage serves the phone remote-control surface. It is a plain
// HTML page speaking the same WebSocket protocol as any other surface;
// holding the session id grants no privilege beyond that.
func (s *Server) handleJoinPage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.store.Get(r.Context(), id); err != nil {
		if errors.Is(err, synclient.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, joinPage, id)
}

const joinPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>stagehand remote</title>
  <style>
    html, body { margin:0; height:100%%; background:#111; color:#eee;
      font-family:-apple-system, 'Segoe UI', sans-serif; }
    .wrap { display:flex; flex-direction:column; height:100%%; padding:16px;
      box-sizing:border-box; gap:16px; }
    .slide { text-align:center; font-size:2.5rem; padding:12px 0; }
    .status { text-align:center; color:#888; font-size:.9rem; }
    button { flex:1; font-size:2rem; border:0; border-radius:12px;
      background:#2d2d2d; color:#eee; }
    button:active { background:#444; }
    .row { display:flex; gap:16px; flex:1; }
    .laser.on { background:#a61e1e; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="slide" id="slide">–</div>
    <div class="row">
      <button id="prev">&#9664;</button>
      <button id="next">&#9654;</button>
    </div>
    <button class="laser" id="laser">laser</button>
    <div class="status" id="status">connecting…</div>
  </div>
  <script>
  (function(){
    const sessionId = %q;
    const proto = location.protocol === 'https:' ? 'wss' : 'ws';
    let ws = null, slide = 0, laser = false;

    const el = id => document.getElementById(id);

    function render(){
      el('slide').textContent = slide + 1;
      el('laser').classList.toggle('on', laser);
    }

    function send(update){
      if (ws && ws.readyState === WebSocket.OPEN) {
        ws.send(JSON.stringify({type:'update', update: update}));
      }
    }

    function connect(){
      ws = new WebSocket(proto + '://' + location.host + '/ws/' + sessionId);
      ws.onopen = () => { el('status').textContent = 'connected'; };
      ws.onmessage = ev => {
        const msg = JSON.parse(ev.data);
        if (msg.type === 'state' && msg.record) {
          slide = msg.record.current_slide_index;
          laser = msg.record.laser_enabled;
          render();
        }
      };
      ws.onclose = () => {
        el('status').textContent = 'reconnecting…';
        setTimeout(connect, 1500);
      };
    }

    el('next').onclick = () => send({slide_index: slide + 1});
    el('prev').onclick = () => send({slide_index: Math.max(0, slide - 1)});
    el('laser').onclick = () => send({laser_enabled: !laser});

    connect();
  })();
  </script>
</body>
</html>
`
