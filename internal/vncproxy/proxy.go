// Package vncproxy relays bytes between a WebSocket client and the raw TCP
// port of the desktop's VNC server. It has no awareness of the RFB protocol;
// frames in one direction become writes in the other, nothing more.
package vncproxy

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// chunkSize is how many bytes one TCP read may carry into a frame.
	chunkSize = 4096

	dialTimeout = 10 * time.Second
	writeWait   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  chunkSize,
	WriteBufferSize: chunkSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Config holds the proxy's endpoint configuration.
type Config struct {
	// Host and Port locate the VNC server.
	Host string
	Port int

	// ProxyPort is where the browser-facing noVNC endpoint listens.
	ProxyPort int
}

// ConnectionInfo describes how clients reach the desktop.
type ConnectionInfo struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	ProxyPort  int    `json:"proxyPort"`
	DisplayURL string `json:"displayUrl"`
	StreamURL  string `json:"streamUrl"`
}

// Proxy pairs WebSocket clients with TCP connections to the VNC server.
type Proxy struct {
	host      string
	port      int
	proxyPort int
}

// New creates a proxy for the given endpoints, with localhost:5900 and
// proxy port 6080 as defaults.
func New(cfg Config) *Proxy {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5900
	}
	if cfg.ProxyPort == 0 {
		cfg.ProxyPort = 6080
	}
	return &Proxy{
		host:      cfg.Host,
		port:      cfg.Port,
		proxyPort: cfg.ProxyPort,
	}
}

// ConnectionInfo returns the endpoints clients use to reach the desktop.
func (p *Proxy) ConnectionInfo() ConnectionInfo {
	return ConnectionInfo{
		Host:       p.host,
		Port:       p.port,
		ProxyPort:  p.proxyPort,
		DisplayURL: fmt.Sprintf("http://%s:%d/vnc.html", p.host, p.proxyPort),
		StreamURL:  fmt.Sprintf("ws://%s:%d/websockify", p.host, p.proxyPort),
	}
}

// HandleWebSocket upgrades the request and relays it to the VNC server
// until either side closes.
func (p *Proxy) HandleWebSocket(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	return p.Relay(conn)
}

// Relay bridges one upgraded WebSocket connection to the VNC server. If the
// dial fails the client is told so and no pumping starts. Otherwise two pumps
// run until one of them stops, at which point both endpoints are closed.
func (p *Proxy) Relay(ws *websocket.Conn) error {
	defer ws.Close()

	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))
	remote, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		log.Printf("VNC dial failed: %v", err)
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		ws.WriteJSON(map[string]string{
			"type":  "error",
			"error": fmt.Sprintf("failed to connect to VNC server at %s", addr),
		})
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	errc := make(chan error, 2)
	go func() { errc <- clientToVNC(ws, remote) }()
	go func() { errc <- vncToClient(remote, ws) }()

	// First pump to stop tears down both endpoints, which unblocks the other.
	<-errc
	remote.Close()
	ws.Close()
	<-errc

	return nil
}

// clientToVNC forwards each WebSocket frame's payload to the TCP socket.
func clientToVNC(ws *websocket.Conn, remote net.Conn) error {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		if _, err := remote.Write(data); err != nil {
			return err
		}
	}
}

// vncToClient forwards TCP reads as binary WebSocket frames, one frame per
// read of at most chunkSize bytes.
func vncToClient(remote net.Conn, ws *websocket.Conn) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := remote.Read(buf)
		if n > 0 {
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if werr := ws.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
