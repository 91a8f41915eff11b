package terminal

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
)

// ShowQR renders a login link as a terminal QR code
func ShowQR(w io.Writer, link string) {
	fmt.Fprintln(w, "\nScan this QR code with the Telegram app (Settings > Devices > Link Desktop Device):")
	qrterminal.GenerateHalfBlock(link, qrterminal.L, w)
	fmt.Fprintf(w, "Or open: %s\n\n", link)
}
