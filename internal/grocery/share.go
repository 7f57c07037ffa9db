package grocery

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// ShareURL is the address a phone scans to open the list.
func ShareURL(baseURL, listID string) string {
	return strings.TrimRight(baseURL, "/") + "/api/grocery-lists/" + listID
}

// ShareQR renders the list's share URL as a PNG QR code.
func ShareQR(baseURL, listID string) ([]byte, error) {
	png, err := qrcode.Encode(ShareURL(baseURL, listID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode share qr: %w", err)
	}
	return png, nil
}
