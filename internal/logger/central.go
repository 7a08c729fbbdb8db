package logger

import (
	"fmt"
	"io"
)

// Tags used by the emulator components.
const (
	TagCPU   = "CPU"
	TagPPU   = "PPU"
	TagAPU   = "APU"
	TagBus   = "BUS"
	TagCart  = "CART"
	TagInput = "INPUT"
	TagApp   = "APP"
	TagAudio = "AUDIO"
	TagVideo = "VIDEO"
)

const maxCentral = 256

var central = newLogger(maxCentral)

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, format string, args ...interface{}) {
	central.log(tag, fmt.Sprintf(format, args...))
}

// Clear removes all entries.
func Clear() {
	central.clear()
}

// Write every entry to output.
func Write(output io.Writer) {
	central.write(output)
}

// Tail writes the last number entries to output.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho echoes new entries to output as they are logged. A nil writer
// turns echoing off.
func SetEcho(output io.Writer) {
	central.setEcho(output)
}

// Entries returns a copy of the current history.
func Entries() []Entry {
	return central.copy()
}
