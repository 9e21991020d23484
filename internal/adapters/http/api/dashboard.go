package api

import (
	"net/http"
)

// dashboardHandler serves the operator dashboard.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests with a small HTML page
// that polls /healthz and /stats and renders the arena's vital signs.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>FitRate Arena</title>
  <style>
    body{font-family:system-ui,sans-serif;margin:0;background:#101418;color:#e6e6e6}
    header{padding:16px 24px;background:#1a212a;font-size:18px;font-weight:600}
    main{padding:24px;display:grid;grid-template-columns:repeat(auto-fill,minmax(220px,1fr));gap:16px}
    .card{background:#1a212a;border-radius:8px;padding:16px}
    .card h2{margin:0 0 8px;font-size:13px;font-weight:500;color:#8da1b5;text-transform:uppercase}
    .card .value{font-size:28px;font-weight:600}
    pre{grid-column:1/-1;background:#1a212a;border-radius:8px;padding:16px;overflow:auto;max-height:400px}
  </style>
</head>
<body>
  <header>FitRate Arena dashboard</header>
  <main>
    <div class="card"><h2>Online</h2><div class="value" id="online">-</div></div>
    <div class="card"><h2>Matches today</h2><div class="value" id="matches">-</div></div>
    <div class="card"><h2>Estimated wait</h2><div class="value" id="wait">-</div></div>
    <div class="card"><h2>Ghost pool</h2><div class="value" id="ghosts">-</div></div>
    <pre id="raw">loading...</pre>
  </main>
  <script>
    async function refresh(){
      try{
        const arena = await (await fetch('/arena/stats')).json();
        document.getElementById('online').textContent = arena.online;
        document.getElementById('matches').textContent = arena.matchesToday;
        document.getElementById('wait').textContent = arena.estimatedWaitSeconds + 's';
        const stats = await (await fetch('/stats')).json();
        document.getElementById('ghosts').textContent = stats.ghost_pool_size ?? '-';
        document.getElementById('raw').textContent = JSON.stringify(stats, null, 2);
      }catch(err){
        document.getElementById('raw').textContent = 'unreachable: ' + err;
      }
    }
    refresh();
    setInterval(refresh, 5000);
  </script>
</body>
</html>`
