package libav

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/types"
)

// types.HardwareDeviceType values are the libav ones, so the conversion
// is a plain cast.

func HardwareDeviceTypeToAstiav(t types.HardwareDeviceType) astiav.HardwareDeviceType {
	return astiav.HardwareDeviceType(t)
}

func HardwareDeviceTypeFromAstiav(t astiav.HardwareDeviceType) types.HardwareDeviceType {
	return types.HardwareDeviceType(t)
}

func PixelFormatFromAstiav(pf astiav.PixelFormat) types.PixelFormat {
	if pf == astiav.PixelFormatNone {
		return types.PixelFormatNone
	}
	return types.PixelFormat(pf.String())
}

func HardwareConfigMethodFromAstiav(flags astiav.CodecHardwareConfigMethodFlags) types.HardwareConfigMethod {
	var result types.HardwareConfigMethod
	for _, m := range []struct {
		Flag   astiav.CodecHardwareConfigMethodFlag
		Method types.HardwareConfigMethod
	}{
		{astiav.CodecHardwareConfigMethodFlagHwDeviceCtx, types.HardwareConfigMethodHWDeviceCtx},
		{astiav.CodecHardwareConfigMethodFlagHwFramesCtx, types.HardwareConfigMethodHWFramesCtx},
		{astiav.CodecHardwareConfigMethodFlagInternal, types.HardwareConfigMethodInternal},
		{astiav.CodecHardwareConfigMethodFlagAdHoc, types.HardwareConfigMethodAdHoc},
	} {
		if flags.Has(m.Flag) {
			result |= m.Method
		}
	}
	return result
}

func DictionaryItemsToAstiav(items types.DictionaryItems) *astiav.Dictionary {
	if len(items) == 0 {
		return nil
	}
	result := astiav.NewDictionary()
	for _, opt := range items.Deduplicate() {
		result.Set(opt.Key, opt.Value, 0)
	}
	return result
}
