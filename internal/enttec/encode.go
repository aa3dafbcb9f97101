package enttec

import "fmt"

// Encode builds a complete outbound message: start mark, label, payload
// length as little-endian 16 bits, payload, end mark. The length field is
// exactly the payload size. Payloads beyond the 16-bit range are rejected
// rather than truncated.
func Encode(label byte, payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		return nil, fmt.Errorf("payload length %d exceeds 16-bit length field", len(payload))
	}
	msg := make([]byte, 0, len(payload)+5)
	msg = append(msg, StartMark, label, byte(len(payload)), byte(len(payload)>>8))
	msg = append(msg, payload...)
	msg = append(msg, EndMark)
	return msg, nil
}
