package comms

import "net"

// loopbackAddress is reported when no IPv4 interface address is found.
const loopbackAddress = "127.0.0.1"

// firstIPv4 resolves the local machine's first non-loopback IPv4
// address. It is used only for the read-only ClientAddress property,
// never for connection logic.
func firstIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return loopbackAddress
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}

	return loopbackAddress
}
