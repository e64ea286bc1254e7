// Package formats provides the RPO mesh container decoder, its zlib (RPOZ)
// envelope and the OBJ text encoder.
//
// Decoding is a pure function of the input bytes:
//
//	raw bytes -> Decompress -> ValidateRPO -> AnalyzeLayout -> extract -> EncodeOBJ
//
// Every stage reports failures through the Err* sentinels so callers can
// use errors.Is across the whole pipeline.
package formats
