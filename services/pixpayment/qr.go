package pixpayment

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// qrImageDataURL renders the opaque PIX code as a scannable PNG, packaged as
// a data URL so the payment view can inline it.
func qrImageDataURL(pixCode string) (string, error) {
	png, err := qrcode.Encode(pixCode, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("error rendering qr image: %s", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
