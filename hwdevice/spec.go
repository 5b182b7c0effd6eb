package hwdevice

import (
	"fmt"
	"strings"

	"github.com/xaionaro-go/avhwaccel/types"
)

const (
	reasonUnknownDeviceType  = "unknown device type"
	reasonNamedDeviceExists  = "named device already exists"
	reasonInvalidSourceName  = "invalid source device name"
	reasonParseError         = "parse error"
	reasonFailedParseOptions = "failed to parse options"
)

// SpecRequest is a parsed device specification:
//
//	type[=name][:device[,key=value...]]
//	type[=name][,key=value...]
//	type[=name]@source
type SpecRequest struct {
	Spec     string
	TypeName string
	Type     types.HardwareDeviceType

	// Name is meaningful only if HasName is set; otherwise a default name
	// is generated on registration.
	Name    types.HardwareDeviceName
	HasName bool

	// Source is the name of the device to derive from ('@' form).
	Source types.HardwareDeviceName

	// DevicePath is empty if the default device of the type is requested.
	DevicePath string
	Options    types.DictionaryItems
}

func (req *SpecRequest) IsDerived() bool {
	return req.Source != ""
}

// ParseSpec parses a device specification. It does not consult any
// registry: duplicate names and unknown derivation sources are detected
// on registration.
func ParseSpec(spec string) (*SpecRequest, error) {
	req := &SpecRequest{Spec: spec}
	invalid := func(reason string, err error) (*SpecRequest, error) {
		return nil, ErrInvalidSpec{Spec: spec, Reason: reason, Err: err}
	}

	rest := spec
	k := strings.IndexAny(rest, ":=@,")
	if k < 0 {
		k = len(rest)
	}
	req.TypeName, rest = rest[:k], rest[k:]
	req.Type = types.HardwareDeviceTypeFromString(req.TypeName)
	if req.Type == types.HardwareDeviceTypeNone {
		return invalid(reasonUnknownDeviceType, nil)
	}

	if strings.HasPrefix(rest, "=") {
		rest = rest[1:]
		k := strings.IndexAny(rest, ":@,")
		if k < 0 {
			k = len(rest)
		}
		req.Name, req.HasName = types.HardwareDeviceName(rest[:k]), true
		rest = rest[k:]
	}

	if rest == "" {
		return req, nil
	}

	switch rest[0] {
	case ':':
		rest = rest[1:]
		path, opts, hasOpts := strings.Cut(rest, ",")
		req.DevicePath = path
		if hasOpts {
			var err error
			req.Options, err = types.ParseDictionary(opts)
			if err != nil {
				return invalid(reasonFailedParseOptions, err)
			}
		}
	case '@':
		req.Source = types.HardwareDeviceName(rest[1:])
		if req.Source == "" {
			return invalid(reasonInvalidSourceName, nil)
		}
	case ',':
		var err error
		req.Options, err = types.ParseDictionary(rest[1:])
		if err != nil {
			return invalid(reasonFailedParseOptions, err)
		}
	default:
		return invalid(reasonParseError, nil)
	}
	return req, nil
}

func (req *SpecRequest) String() string {
	var b strings.Builder
	b.WriteString(req.Type.String())
	if req.HasName {
		fmt.Fprintf(&b, "=%s", req.Name)
	}
	switch {
	case req.IsDerived():
		fmt.Fprintf(&b, "@%s", req.Source)
	case req.DevicePath != "":
		fmt.Fprintf(&b, ":%s", req.DevicePath)
		if len(req.Options) > 0 {
			fmt.Fprintf(&b, ",%s", req.Options)
		}
	case len(req.Options) > 0:
		fmt.Fprintf(&b, ",%s", req.Options)
	}
	return b.String()
}
