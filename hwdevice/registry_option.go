package hwdevice

type RegistryOptionCommons struct{}

func (RegistryOptionCommons) registryOption() {}

type RegistryOption interface {
	registryOption()
}

type RegistryOptions []RegistryOption

func RegistryOptionLatest[T RegistryOption](s RegistryOptions) (ret T, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if v, ok := s[i].(T); ok {
			return v, true
		}
	}
	return
}

// RegistryOptionMaxDevices limits the amount of devices in the registry;
// growing past the limit is handled as an allocation failure. Zero means
// no limit.
type RegistryOptionMaxDevices struct {
	RegistryOptionCommons
	MaxDevices int
}
