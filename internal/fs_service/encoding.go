package fs_service

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

// encodeBytes renders raw file bytes as text in the requested encoding.
func encodeBytes(b []byte, encoding string) (string, error) {
	switch encoding {
	case "utf8", "utf-8":
		return string(b), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(b), nil
	case "hex":
		return hex.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

// decodeText interprets caller-supplied text content per the requested
// encoding, returning the bytes to write.
func decodeText(s string, encoding string) ([]byte, error) {
	switch encoding {
	case "", "utf8", "utf-8":
		return []byte(s), nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
		return b, nil
	case "hex":
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex data: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

// openFlagBits maps Node-style flag strings to OS open flags.
func openFlagBits(flag string) (int, error) {
	switch flag {
	case "r":
		return os.O_RDONLY, nil
	case "r+":
		return os.O_RDWR, nil
	case "", "w":
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case "wx":
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC | os.O_EXCL, nil
	case "w+":
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	case "a":
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, nil
	case "ax":
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND | os.O_EXCL, nil
	case "a+":
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFlag, flag)
	}
}
