package crossproduct

import "errors"

// ErrStateError marks a cross-product instance used out of protocol:
// Step called before Reset, or Step called again after the episode
// already terminated or truncated without an intervening Reset
// (spec §4.4 "Failure").
var ErrStateError = errors.New("crossproduct: used out of protocol")

// ErrEncoderError marks a user-supplied Encode/DecodeGround pair that
// disagreed on a round-trip check. Production Reset/Step never raise
// it; AssertEncoderRoundTrip is a test-build helper (spec §7
// "EncoderError ... detected by round-trip assertion in test builds").
var ErrEncoderError = errors.New("crossproduct: encode/decode_ground round-trip mismatch")
