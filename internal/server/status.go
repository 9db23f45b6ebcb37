package server

import (
	"fmt"
	"net"
)

// Status summarizes the server for display on the host.
type Status struct {
	Running     bool   `json:"isRunning"`
	Port        int    `json:"port"`
	IP          string `json:"ip"`
	URL         string `json:"url"`
	Connections int    `json:"connections"`
}

// Status reports the current server state, including the LAN address
// remotes should connect to.
func (s *Server) Status() Status {
	st := Status{
		Running:     s.Running(),
		Port:        s.Port(),
		IP:          lanIP(),
		Connections: s.registry.count(),
	}
	if st.Running {
		st.URL = fmt.Sprintf("http://%s:%d", st.IP, st.Port)
	}
	return st
}

// lanIP returns the first non-loopback IPv4 address, falling back to
// localhost when the host has none.
func lanIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
