package dmtx

import "errors"

var (
	// ErrNotFound is returned when a barcode is not found in the image.
	ErrNotFound = errors.New("barcode not found")

	// ErrChecksum is returned when a barcode's checksum does not match.
	ErrChecksum = errors.New("checksum error")

	// ErrFormat is returned when a barcode cannot be decoded due to format issues.
	ErrFormat = errors.New("format error")

	// ErrWriter is returned when a barcode cannot be encoded.
	ErrWriter = errors.New("writer error")

	// ErrUnsupportedChar is returned when the input to an encoder contains a
	// byte no requested scheme can represent.
	ErrUnsupportedChar = errors.New("character not supported by requested scheme")

	// ErrNotOnByteBoundary is returned when a bit-level reader is asked to
	// resume byte-aligned operations mid-codeword.
	ErrNotOnByteBoundary = errors.New("bit reader not on a byte boundary")

	// ErrIllegalParameter is returned when a caller-supplied option is out of
	// range for the operation it configures.
	ErrIllegalParameter = errors.New("illegal parameter")

	// ErrMessageTooLarge is returned when a message doesn't fit in the
	// largest available symbol size, or in the caller's requested size.
	ErrMessageTooLarge = errors.New("message too large for symbol")

	// ErrSchemeIncomplete is returned when an encodation scheme run ends
	// without reaching a state that can be safely unlatched or completed.
	ErrSchemeIncomplete = errors.New("encodation scheme left incomplete")

	// ErrCantCompactNonDigits is returned when compact ASCII encoding meets
	// input it cannot fold into a digit pair.
	ErrCantCompactNonDigits = errors.New("compact ascii requires digit pairs")

	// ErrUnexpectedScheme is returned when a codeword stream operation runs
	// under a different encodation scheme than the one it requires.
	ErrUnexpectedScheme = errors.New("operation under unexpected encodation scheme")

	// ErrRSUncorrectable is returned when Reed-Solomon error correction
	// cannot recover a codeword block.
	ErrRSUncorrectable = errors.New("reed-solomon: too many errors to correct")
)
