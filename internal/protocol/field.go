package protocol

import "fmt"

// Command or setting carried by a message. The numeric values are part of
// the wire format.
type Field int32

const (
	FieldNone       Field = iota // No command; used by terminators.
	FieldWorkdir                 // Set the working directory.
	FieldSocket                  // Set the socket path.
	FieldPIDFile                 // Set the PID file path.
	FieldConfig                  // Set the config file path.
	FieldDaemon                  // Run the server in the background.
	FieldIncrease                // Raise the level by one.
	FieldDecrease                // Lower the level by one.
	FieldOn                      // Restore the saved level.
	FieldOff                     // Save the level and turn the display off.
	FieldSwitch                  // Toggle between on and off.
	FieldStop                    // Stop the daemon.
	FieldStart                   // Start the daemon.
	FieldRestart                 // Restart the daemon.
	FieldMinimal                 // Set the raw brightness of level zero.
	FieldNumLevels               // Set the number of levels.
	FieldTransition              // Set the transition time in milliseconds.
	FieldDevice                  // Select the backlight device.
	FieldSaved                   // Query the saved level.
	FieldList                    // List backlight devices.

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldNone:       "none",
	FieldWorkdir:    "workdir",
	FieldSocket:     "socket",
	FieldPIDFile:    "pidfile",
	FieldConfig:     "config",
	FieldDaemon:     "daemon",
	FieldIncrease:   "increase",
	FieldDecrease:   "decrease",
	FieldOn:         "on",
	FieldOff:        "off",
	FieldSwitch:     "switch",
	FieldStop:       "stop",
	FieldStart:      "start",
	FieldRestart:    "restart",
	FieldMinimal:    "minimal",
	FieldNumLevels:  "num-levels",
	FieldTransition: "transition",
	FieldDevice:     "devname",
	FieldSaved:      "saved",
	FieldList:       "list",
}

// Payload type each field's request carries.
var fieldTypes = [fieldCount]Type{
	FieldWorkdir:    TypeString,
	FieldSocket:     TypeString,
	FieldPIDFile:    TypeString,
	FieldConfig:     TypeString,
	FieldMinimal:    TypeInt,
	FieldNumLevels:  TypeInt,
	FieldTransition: TypeInt,
	FieldDevice:     TypeString,
}

// Returns the command-line name of the field.
func (f Field) String() string {
	if f.Valid() {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", int32(f))
}

// Reports whether f is a known field.
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Returns the payload type a request for f must carry.
func (f Field) Type() Type {
	if !f.Valid() {
		return TypeError
	}
	return fieldTypes[f]
}

// Looks up a field by its command-line name.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}
	return FieldNone, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Kind of payload a message carries.
type Type int32

const (
	TypeNone   Type = iota // No payload.
	TypeInt                // Integer payload.
	TypeString             // String payload.
	TypeError              // Error description; ends the reply stream.
)

// Returns a lowercase name for the type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeError:
		return "error"
	default:
		return fmt.Sprintf("type(%d)", int32(t))
	}
}
