// Package facade implements the command façade: a single trusted-network HTTP
// endpoint that resolves a node name to its home worker and proxies a command
// through Transport, streaming the combined output back to the caller.
package facade

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/transport"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// Dialer opens a Transport to the worker reachable at addr. Facade dials once
// per request rather than pooling — requests are expected to be operator-driven
// and low-frequency, matching the "no auth, trusted-network only" non-goal.
type Dialer func(addr string) (transport.Transport, error)

// Facade serves POST /execute.
type Facade struct {
	Assignment *topo.Assignment
	RemoteDir  string // the worker-side directory the HA was started against
	Dial       Dialer
}

// ExecuteRequest is the POST /execute request body.
type ExecuteRequest struct {
	Node    string `json:"node"`
	Command string `json:"command"`
}

// Handler returns an http.Handler serving POST /execute.
func (f *Facade) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/execute", f.handleExecute)
	return mux
}

func (f *Facade) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Node == "" || req.Command == "" {
		http.Error(w, "node and command are required", http.StatusBadRequest)
		return
	}

	machineID, ok := f.Assignment.HomeOf(req.Node)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown node %q", req.Node), http.StatusNotFound)
		return
	}
	addr, ok := f.Assignment.IPOf(machineID)
	if !ok {
		http.Error(w, fmt.Sprintf("no address recorded for machine %d", machineID), http.StatusInternalServerError)
		return
	}

	t, err := f.Dial(addr)
	if err != nil {
		http.Error(w, fmt.Sprintf("dialing worker %d (%s): %v", machineID, addr, err), http.StatusBadGateway)
		return
	}
	defer t.Close()

	remoteCmd := fmt.Sprintf("skyctl ha exec %d %s %s %s", machineID, f.RemoteDir, req.Node, req.Command)

	out, err := t.Exec(r.Context(), remoteCmd)
	if err != nil {
		util.WithNode(req.Node).WithError(err).Warn("facade: exec failed")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	streamLines(w, out)
}

// streamLines writes out line by line, flushing after each line so the
// caller sees output incrementally rather than only after the handler
// returns — the closest approximation the batch-capture Transport.Exec
// allows to a true per-line proxy.
func streamLines(w http.ResponseWriter, out string) {
	flusher, canFlush := w.(http.Flusher)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
		if canFlush {
			flusher.Flush()
		}
	}
}
