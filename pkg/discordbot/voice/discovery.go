package voice

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// discoveryPacketLen is the fixed UDP IP-discovery packet size (spec §4.2).
const discoveryPacketLen = 74

// buildDiscoveryPacket builds the 74-byte request packet: byte 1 = 0x01
// (request type), bytes 2-3 = 70 big-endian (payload length), bytes 4-7
// = SSRC big-endian, remainder zero.
func buildDiscoveryPacket(ssrc uint32) []byte {
	packet := make([]byte, discoveryPacketLen)
	packet[0] = 0x00
	packet[1] = 0x01
	binary.BigEndian.PutUint16(packet[2:4], 70)
	binary.BigEndian.PutUint32(packet[4:8], ssrc)
	return packet
}

// parseDiscoveryResponse extracts the external IP (bytes 8..first NUL)
// and port (last two bytes, big-endian) from the echoed packet.
func parseDiscoveryResponse(packet []byte) (ip string, port uint16, err error) {
	if len(packet) < discoveryPacketLen {
		return "", 0, fmt.Errorf("discovery response too short: %d bytes", len(packet))
	}

	ipBytes := packet[8:]
	nul := bytes.IndexByte(ipBytes, 0)
	if nul == -1 {
		nul = len(ipBytes)
	}
	ip = string(ipBytes[:nul])

	port = binary.BigEndian.Uint16(packet[len(packet)-2:])
	return ip, port, nil
}

// performDiscovery sends the request and blocks for the single echoed
// reply, run once per voice session on a dedicated goroutine (spec §5:
// "a one-shot IP-discovery receiver").
func performDiscovery(conn *net.UDPConn, ssrc uint32) (string, uint16, error) {
	if _, err := conn.Write(buildDiscoveryPacket(ssrc)); err != nil {
		return "", 0, err
	}

	buf := make([]byte, discoveryPacketLen)
	n, err := conn.Read(buf)
	if err != nil {
		return "", 0, err
	}

	return parseDiscoveryResponse(buf[:n])
}
