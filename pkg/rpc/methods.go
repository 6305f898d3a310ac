package rpc

// GetInfo is the subset of the daemon's getinfo response the harness cares
// about. The warning fields are present while the node is still catching up:
// WarningBitcoindSync while the backend itself is syncing, and
// WarningLightningdSync while the node is behind the backend.
type GetInfo struct {
	ID                    string `json:"id"`
	Alias                 string `json:"alias"`
	Network               string `json:"network"`
	Blockheight           int    `json:"blockheight"`
	NumPeers              int    `json:"num_peers"`
	WarningBitcoindSync   string `json:"warning_bitcoind_sync,omitempty"`
	WarningLightningdSync string `json:"warning_lightningd_sync,omitempty"`
}

// Syncing reports whether the node is still waiting on either the backend
// chain sync or its own catch-up.
func (g *GetInfo) Syncing() bool {
	return g.WarningBitcoindSync != "" || g.WarningLightningdSync != ""
}

// GetInfo queries the daemon's status.
func (c *Client) GetInfo() (*GetInfo, error) {
	var info GetInfo
	if err := c.Call("getinfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type connectParams struct {
	ID   string `json:"id"`
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// ConnectResult is the daemon's acknowledgement of a connect call.
type ConnectResult struct {
	ID string `json:"id"`
}

// Connect instructs the daemon to dial the given peer. Host and port may be
// zero when the peer is already known or reachable through gossip.
func (c *Client) Connect(id, host string, port int) (*ConnectResult, error) {
	var res ConnectResult
	if err := c.Call("connect", connectParams{ID: id, Host: host, Port: port}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Peer is one entry of the daemon's listpeers response.
type Peer struct {
	ID        string `json:"id"`
	Connected bool   `json:"connected"`
}

type listPeersResult struct {
	Peers []Peer `json:"peers"`
}

// ListPeers returns the daemon's current peer list.
func (c *Client) ListPeers() ([]Peer, error) {
	var res listPeersResult
	if err := c.Call("listpeers", nil, &res); err != nil {
		return nil, err
	}
	return res.Peers, nil
}

// Stop asks the daemon to shut down cleanly. The daemon may close the socket
// before answering, so callers treat any error here as best-effort.
func (c *Client) Stop() error {
	return c.Call("stop", nil, nil)
}
