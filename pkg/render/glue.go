package render

import (
	"encoding/json"
	"strings"

	"github.com/joestar-dev/joestar/pkg/vdom"
)

// glueTemplate is the document-side half of the bridge. It forwards events
// from elements whose data-jo-on lists the event kind and applies
// instructions sent by the host. __KINDS__ is replaced with the JSON list of
// element event kinds.
const glueTemplate = `(function () {
  "use strict";
  var KINDS = __KINDS__;
  var HOVER = { mouseenter: true, mouseleave: true };

  function send(msg) {
    if (typeof window.__joSend === "function") {
      window.__joSend(JSON.stringify(msg));
    }
  }

  function listens(el, kind) {
    var on = el.getAttribute("data-jo-on");
    return !!on && (" " + on + " ").indexOf(" " + kind + " ") >= 0;
  }

  function detail(e) {
    var d = {};
    var t = e.target;
    if (t && t.value !== undefined) d.value = String(t.value);
    if (t && t.type === "checkbox") d.checked = String(!!t.checked);
    if (e.key !== undefined) d.key = String(e.key);
    if (e.clientX !== undefined) {
      d.x = String(e.clientX);
      d.y = String(e.clientY);
      d.button = String(e.button);
    }
    return d;
  }

  KINDS.forEach(function (kind) {
    document.addEventListener(kind, function (e) {
      var el = e.target instanceof Element ? e.target : null;
      while (el) {
        el = el.closest("[data-jo-on]");
        if (!el) return;
        if (listens(el, kind)) {
          if (HOVER[kind] && el !== e.target) return;
          if (kind === "submit") e.preventDefault();
          send({ id: el.id, gen: Number(el.getAttribute("data-jo-gen")), kind: kind, data: detail(e) });
          return;
        }
        el = el.parentElement;
      }
    }, true);
  });

  window.addEventListener("resize", function () {
    send({ id: "@view", kind: "resize", data: { width: String(window.innerWidth), height: String(window.innerHeight) } });
  });
  window.addEventListener("beforeunload", function () {
    send({ id: "@view", kind: "close-request" });
  });
  var lastX = window.screenX, lastY = window.screenY;
  setInterval(function () {
    if (window.screenX !== lastX || window.screenY !== lastY) {
      lastX = window.screenX;
      lastY = window.screenY;
      send({ id: "@view", kind: "move", data: { x: String(lastX), y: String(lastY) } });
    }
  }, 500);

  function byId(id) {
    return document.getElementById(id);
  }

  function setListen(el, kind, on) {
    var kinds = (el.getAttribute("data-jo-on") || "").split(" ").filter(function (k) { return k && k !== kind; });
    if (on) kinds.push(kind);
    kinds.sort();
    if (kinds.length) el.setAttribute("data-jo-on", kinds.join(" "));
    else el.removeAttribute("data-jo-on");
  }

  window.__jo = {
    apply: function (ins) {
      var el = ins.id ? byId(ins.id) : null;
      switch (ins.op) {
        case "fill": document.body.innerHTML = ins.html || ""; return;
        case "setTitle": document.title = ins.value || ""; return;
        case "eval": (0, eval)(ins.value); return;
      }
      if (!el) return;
      switch (ins.op) {
        case "setAttr": el.setAttribute(ins.key, ins.value || ""); break;
        case "setStyle": el.style.setProperty(ins.key, ins.value || ""); break;
        case "setText":
          var first = el.firstChild;
          if (first && first.nodeType === 3) first.nodeValue = ins.value || "";
          else el.insertBefore(document.createTextNode(ins.value || ""), first);
          break;
        case "replaceChildren":
          var text = el.firstChild && el.firstChild.nodeType === 3 ? el.firstChild : null;
          el.innerHTML = ins.html || "";
          if (text) el.insertBefore(text, el.firstChild);
          break;
        case "remove": el.remove(); break;
        case "listen": setListen(el, ins.key, true); break;
        case "unlisten": setListen(el, ins.key, false); break;
      }
    }
  };
})();`

// glueScript is built once; the event kinds never change at runtime.
var glueScript = buildGlue()

func buildGlue() string {
	kinds := vdom.ElementEvents()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	b, _ := json.Marshal(names)
	return strings.Replace(glueTemplate, "__KINDS__", string(b), 1)
}

// Glue returns the document glue script.
func Glue() string {
	return glueScript
}
