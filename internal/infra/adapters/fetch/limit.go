package fetch

import (
	"fmt"
	"io"

	"telegram-file-relay/internal/domain"
)

// readLimited reads at most maxBytes from r. One extra byte is requested so an
// oversize body is detected without buffering the rest of it.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrTooLarge, maxBytes)
	}
	return data, nil
}

func tooLarge(size, maxBytes int64) error {
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", domain.ErrTooLarge, size, maxBytes)
	}
	return nil
}
