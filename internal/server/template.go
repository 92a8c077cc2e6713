package server

import (
	"html/template"
	"log"
	"net/http"

	"WatchBoard/internal/model"
	"WatchBoard/internal/quote"
)

type ownerGroup struct {
	Owner   string
	Entries []model.WatchlistEntry
}

type indexData struct {
	Groups        []ownerGroup
	Windows       []string
	DefaultWindow string
	DefaultTicker string
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data := indexData{
		Windows:       quote.Windows,
		DefaultWindow: s.defaultWindow,
	}
	if len(s.watchlist) > 0 {
		data.DefaultTicker = s.watchlist[0].Ticker
	}

	// Group by owner, preserving watchlist order.
	byOwner := make(map[string]*ownerGroup)
	var order []string
	for _, e := range s.watchlist {
		g, ok := byOwner[e.Owner]
		if !ok {
			g = &ownerGroup{Owner: e.Owner}
			byOwner[e.Owner] = g
			order = append(order, e.Owner)
		}
		g.Entries = append(g.Entries, e)
	}
	for _, o := range order {
		data.Groups = append(data.Groups, *byOwner[o])
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("[ERROR] render index: %v", err)
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>WatchBoard</title>
    <script src="https://cdn.plot.ly/plotly-latest.min.js"></script>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; background: #f5f5f5; display: flex; }
        .sidebar { width: 260px; min-height: 100vh; background: #212529; color: #eee; padding: 16px; }
        .sidebar h2 { font-size: 18px; margin-top: 0; }
        .owner { margin-bottom: 18px; }
        .owner h3 { font-size: 14px; text-transform: capitalize; border-bottom: 1px solid #444; padding-bottom: 4px; }
        .entry { display: flex; justify-content: space-between; padding: 4px 2px; cursor: pointer; border-radius: 4px; }
        .entry:hover { background: #343a40; }
        .cat { font-size: 10px; color: #999; margin-left: 4px; }
        .badge { font-size: 11px; padding: 1px 6px; border-radius: 8px; }
        .badge.bullish { background: #28a745; color: white; }
        .badge.bearish { background: #dc3545; color: white; }
        .badge.neutral { background: #6c757d; color: white; }
        .badge.error { background: #ffc107; color: #333; }
        .main { flex: 1; padding: 20px; max-width: 1100px; }
        .header h1 { margin: 0 0 4px; }
        .controls { margin: 14px 0; }
        select { padding: 8px; border-radius: 4px; border: 1px solid #ddd; }
        .metrics { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin-bottom: 24px; }
        .metric { background: white; padding: 15px; border-radius: 8px; text-align: center; }
        .metric-value { font-size: 22px; font-weight: bold; color: #007bff; }
        .metric-label { font-size: 13px; color: #666; }
        .chart { background: white; border-radius: 8px; margin-bottom: 24px; }
        .error-box { color: red; padding: 16px; display: none; }
    </style>
</head>
<body>
    <div class="sidebar">
        <h2>📋 Watchlist</h2>
        {{range .Groups}}
        <div class="owner">
            <h3>{{.Owner}}</h3>
            {{range .Entries}}
            <div class="entry" onclick="selectTicker('{{.Ticker}}')">
                <span>{{.Ticker}}<span class="cat">{{.Category}}</span></span>
                <span class="badge neutral" id="badge-{{.Ticker}}">…</span>
            </div>
            {{end}}
        </div>
        {{end}}
    </div>

    <div class="main">
        <div class="header">
            <h1>📈 WatchBoard</h1>
            <p id="subtitle">Loading…</p>
        </div>

        <div class="controls">
            <label for="window">Window:</label>
            <select id="window" onchange="loadAll()">
                {{$def := .DefaultWindow}}
                {{range .Windows}}<option value="{{.}}" {{if eq . $def}}selected{{end}}>{{.}}</option>{{end}}
            </select>
        </div>

        <div id="error" class="error-box"></div>
        <div id="metrics" class="metrics"></div>
        <div id="price-chart" class="chart"></div>
        <div id="volume-chart" class="chart"></div>
        <div id="ma-chart" class="chart"></div>
        <div id="stats"></div>
    </div>

    <script>
        let ticker = '{{.DefaultTicker}}';

        function selectTicker(t) { ticker = t; loadAll(); }

        async function loadAll() {
            document.getElementById('subtitle').textContent = ticker;
            await Promise.all([loadQuote(), loadHistory()]);
        }

        async function loadQuote() {
            try {
                const r = await fetch('/api/quote?ticker=' + encodeURIComponent(ticker));
                const q = await r.json();
                if (q.error) throw new Error(q.error);
                renderMetrics(q);
            } catch (e) { showError(e.message); }
        }

        async function loadHistory() {
            const windowSel = document.getElementById('window').value;
            try {
                const r = await fetch('/api/history?ticker=' + encodeURIComponent(ticker) + '&window=' + windowSel);
                const h = await r.json();
                if (h.error) throw new Error(h.error);
                drawCharts(h);
                renderStats(h.stats);
            } catch (e) { showError(e.message); }
        }

        function renderMetrics(q) {
            const up = q.day_change_pct >= 0;
            document.getElementById('metrics').innerHTML =
                metric(q.price.toFixed(2) + ' $', 'Current Price') +
                metric((up ? '+' : '') + q.day_change_pct.toFixed(2) + '%', 'Day Change', up ? 'green' : 'red') +
                metric(q.market_cap_text, 'Market Cap');
        }

        function metric(value, label, color) {
            return '<div class="metric"><div class="metric-value"' +
                (color ? ' style="color:' + color + '"' : '') + '>' + value +
                '</div><div class="metric-label">' + label + '</div></div>';
        }

        function drawCharts(h) {
            Plotly.newPlot('price-chart', [{
                x: h.dates, y: h.prices, type: 'scatter', mode: 'lines',
                name: h.ticker, line: {color: '#007bff'}
            }], {title: h.ticker + ' — ' + h.window, xaxis: {title: 'Date'}, yaxis: {title: 'Price ($)'}});

            Plotly.newPlot('volume-chart', [{
                x: h.dates, y: h.volumes, type: 'bar', name: 'Volume', marker: {color: '#28a745'}
            }], {title: 'Volume', xaxis: {title: 'Date'}, yaxis: {title: 'Volume'}});

            Plotly.newPlot('ma-chart', [
                {x: h.ma_dates, y: h.ma_prices, type: 'scatter', mode: 'lines', name: 'Close', line: {color: '#007bff'}},
                {x: h.ma_dates, y: h.ma_short, type: 'scatter', mode: 'lines', name: 'Short MA', line: {color: '#ffc107'}},
                {x: h.ma_dates, y: h.ma_long, type: 'scatter', mode: 'lines', name: 'Long MA', line: {color: '#dc3545'}}
            ], {title: 'Price and moving averages', xaxis: {title: 'Date'}, yaxis: {title: 'Price ($)'}});
        }

        function renderStats(s) {
            document.getElementById('stats').innerHTML =
                '<h3>📈 Statistics</h3><ul>' +
                '<li>Days: ' + s.days + '</li>' +
                '<li>Volatility: ' + s.volatility.toFixed(2) + '%</li>' +
                '<li>Total return: ' + s.total_return.toFixed(2) + '%</li>' +
                '<li>High: ' + s.high.toFixed(2) + ' $ / Low: ' + s.low.toFixed(2) + ' $</li>' +
                '</ul>';
        }

        async function loadSignals() {
            try {
                const r = await fetch('/api/signals');
                const data = await r.json();
                for (const e of data.entries) {
                    const badge = document.getElementById('badge-' + e.ticker);
                    if (!badge) continue;
                    if (e.error) {
                        badge.className = 'badge error';
                        badge.textContent = e.error;
                    } else {
                        badge.className = 'badge ' + e.classification;
                        badge.textContent = e.classification;
                    }
                }
            } catch (e) { /* sidebar degrades silently */ }
        }

        function showError(msg) {
            const box = document.getElementById('error');
            box.textContent = msg;
            box.style.display = 'block';
            setTimeout(() => { box.style.display = 'none'; }, 5000);
        }

        loadAll();
        loadSignals();
    </script>
</body>
</html>
`))
