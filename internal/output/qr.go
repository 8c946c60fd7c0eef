package output

import (
	"io"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"golang.org/x/term"
	"rsc.io/qr"
)

// QRConfig controls how a QR code is drawn on the terminal.
type QRConfig struct {
	// Level is the QR error correction level.
	Level qr.Level
	// QuietZone is the width, in blocks, of the blank margin around the code.
	QuietZone int
	// HalfBlocks draws two rows per terminal line for a smaller code.
	HalfBlocks bool
}

// DefaultQRConfig returns the rendering settings used for payment requests:
// low error correction keeps the code small enough for an 80-column terminal.
func DefaultQRConfig() QRConfig {
	return QRConfig{
		Level:      qr.L,
		QuietZone:  1,
		HalfBlocks: true,
	}
}

// CanRenderQR reports whether w is an interactive terminal. QR codes are
// unreadable noise in piped or redirected output, so rendering is gated on
// this check.
func CanRenderQR(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd fits in int on supported platforms
}

// qrPayload normalizes data before encoding. BOLT 11 invoices (lnbc/lntb)
// are case-insensitive, and uppercasing them lets the encoder pick the
// alphanumeric mode, which yields a denser, easier-to-scan code.
func qrPayload(data string) string {
	switch lower := strings.ToLower(data); {
	case strings.HasPrefix(lower, "lnbc"), strings.HasPrefix(lower, "lntb"):
		return strings.ToUpper(data)
	default:
		return data
	}
}

// RenderQR draws a QR code for data on w. When w is not a terminal it writes
// nothing and returns nil, so callers can invoke it unconditionally.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if !CanRenderQR(w) {
		return nil
	}

	qrterminal.GenerateWithConfig(qrPayload(data), qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}
