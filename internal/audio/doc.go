// Package audio turns base64 PCM payloads into playable buffers and plays
// them through a single owned output device using the oto/v3 library. At most
// one buffer is audible at a time; starting a new one stops the previous one.
package audio
