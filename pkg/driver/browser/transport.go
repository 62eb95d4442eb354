package browser

// transportScript defines window.__joSend over a socket at the page's
// path + "/ws" and applies every instruction the host sends. Messages sent
// before the socket opens are queued. An abnormal close reloads the page,
// which the driver serves with the current document.
const transportScript = `(function () {
  "use strict";
  var queue = [];
  var ws = null;
  var url = (location.protocol === "https:" ? "wss://" : "ws://") +
    location.host + location.pathname.replace(/\/$/, "") + "/ws";

  function connect() {
    ws = new WebSocket(url);
    ws.onopen = function () {
      while (queue.length) ws.send(queue.shift());
    };
    ws.onmessage = function (m) {
      window.__jo.apply(JSON.parse(m.data));
    };
    ws.onclose = function (e) {
      ws = null;
      if (e.code !== 1000) setTimeout(function () { location.reload(); }, 1000);
    };
  }

  window.__joSend = function (msg) {
    if (ws && ws.readyState === 1) ws.send(msg);
    else queue.push(msg);
  };
  connect();
})();`
