/*
Copyright © 2026 Oddword Authors
*/

package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(newPage("Oddword", "Play")))
	}
}

// Simple HTML client for quick testing
const gameHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Oddword</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #log { margin-top: 1rem; padding: 0; list-style: none; }
  #log li { padding: 0.25rem 0; border-bottom: 1px solid #ddd; }
  button { margin-right: 0.5rem; }
</style>
</head>
<body>
<h1>Oddword</h1>
<div id="status">Connecting…</div>
<div>
  <button id="create">Create room</button>
  <button id="join">Join room</button>
  <button id="start">Start (infiltrator)</button>
  <button id="startSpy">Start (spy)</button>
  <button id="done">Done speaking</button>
  <button id="vote">Vote</button>
  <button id="again">Play again</button>
</div>
<ul id="log"></ul>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const logEl = document.getElementById('log');

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const wsPath = location.pathname.replace(/\/$/, '') + '/ws';
  const ws = new WebSocket(proto + location.host + wsPath);

  function log(text) {
    const li = document.createElement('li');
    li.textContent = text;
    logEl.prepend(li);
  }

  function send(msg) {
    ws.send(JSON.stringify(msg));
  }

  ws.onopen = function() {
    statusEl.textContent = 'Connected.';
  };

  ws.onmessage = function(event) {
    try {
      const msg = JSON.parse(event.data);
      log(msg.type + ': ' + event.data);
      if (msg.type === 'room_error') {
        statusEl.textContent = msg.message;
      }
    } catch (e) {
      console.error('bad message', e);
    }
  };

  ws.onclose = function() {
    statusEl.textContent = 'Disconnected.';
  };

  document.getElementById('create').onclick = function() {
    const name = prompt('Enter your name:') || '';
    if (name) send({ type: 'create_room', player_name: name });
  };

  document.getElementById('join').onclick = function() {
    const params = new URLSearchParams(location.search);
    const code = params.get('code') || prompt('Enter room code:') || '';
    const name = prompt('Enter your name:') || '';
    if (code && name) send({ type: 'join_room', room_code: code, player_name: name });
  };

  document.getElementById('start').onclick = function() {
    send({ type: 'start_game', mode: 'infiltrator' });
  };

  document.getElementById('startSpy').onclick = function() {
    send({ type: 'start_game', mode: 'spy' });
  };

  document.getElementById('done').onclick = function() {
    send({ type: 'end_speaking' });
  };

  document.getElementById('vote').onclick = function() {
    const target = prompt('Enter target player id:') || '';
    if (target) send({ type: 'cast_vote', target_id: target });
  };

  document.getElementById('again').onclick = function() {
    send({ type: 'play_again' });
  };
})();
</script>
</body>
</html>
`

func serveGamePage(_ *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		_, _ = w.Write([]byte(gameHTML))
	}
}
