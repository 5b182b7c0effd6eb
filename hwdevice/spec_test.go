package hwdevice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avhwaccel/types"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		spec       string
		want       *SpecRequest
		wantReason string
	}{
		{
			name: "type only",
			spec: "vaapi",
			want: &SpecRequest{TypeName: "vaapi", Type: types.HardwareDeviceTypeVAAPI},
		},
		{
			name: "named",
			spec: "cuda=gpu0",
			want: &SpecRequest{TypeName: "cuda", Type: types.HardwareDeviceTypeCUDA, Name: "gpu0", HasName: true},
		},
		{
			name: "named with path and options",
			spec: "vaapi=va:/dev/dri/renderD128,driver=iHD,kernel_driver=i915",
			want: &SpecRequest{
				TypeName:   "vaapi",
				Type:       types.HardwareDeviceTypeVAAPI,
				Name:       "va",
				HasName:    true,
				DevicePath: "/dev/dri/renderD128",
				Options: types.DictionaryItems{
					{Key: "driver", Value: "iHD"},
					{Key: "kernel_driver", Value: "i915"},
				},
			},
		},
		{
			name: "path only",
			spec: "qsv:hw",
			want: &SpecRequest{TypeName: "qsv", Type: types.HardwareDeviceTypeQSV, DevicePath: "hw"},
		},
		{
			name: "empty path",
			spec: "vaapi:",
			want: &SpecRequest{TypeName: "vaapi", Type: types.HardwareDeviceTypeVAAPI},
		},
		{
			name: "empty path with options",
			spec: "vulkan:,debug=1",
			want: &SpecRequest{
				TypeName: "vulkan",
				Type:     types.HardwareDeviceTypeVulkan,
				Options:  types.DictionaryItems{{Key: "debug", Value: "1"}},
			},
		},
		{
			name: "options only after name",
			spec: "qsv=q,child_device_type=vaapi",
			want: &SpecRequest{
				TypeName: "qsv",
				Type:     types.HardwareDeviceTypeQSV,
				Name:     "q",
				HasName:  true,
				Options:  types.DictionaryItems{{Key: "child_device_type", Value: "vaapi"}},
			},
		},
		{
			name: "options only after type",
			spec: "opencl,platform_vendor=Intel",
			want: &SpecRequest{
				TypeName: "opencl",
				Type:     types.HardwareDeviceTypeOpenCL,
				Options:  types.DictionaryItems{{Key: "platform_vendor", Value: "Intel"}},
			},
		},
		{
			name: "derived",
			spec: "opencl=ocl@va",
			want: &SpecRequest{
				TypeName: "opencl",
				Type:     types.HardwareDeviceTypeOpenCL,
				Name:     "ocl",
				HasName:  true,
				Source:   "va",
			},
		},
		{
			name: "derived without name",
			spec: "opencl@va",
			want: &SpecRequest{TypeName: "opencl", Type: types.HardwareDeviceTypeOpenCL, Source: "va"},
		},
		{
			name:       "unknown type",
			spec:       "nvidia=gpu",
			wantReason: reasonUnknownDeviceType,
		},
		{
			name:       "none type",
			spec:       "none",
			wantReason: reasonUnknownDeviceType,
		},
		{
			name:       "empty",
			spec:       "",
			wantReason: reasonUnknownDeviceType,
		},
		{
			name:       "double name",
			spec:       "vaapi=a=b:/dev/dri/card0",
			wantReason: "",
			want: &SpecRequest{
				TypeName:   "vaapi",
				Type:       types.HardwareDeviceTypeVAAPI,
				Name:       "a=b",
				HasName:    true,
				DevicePath: "/dev/dri/card0",
			},
		},
		{
			name:       "empty source",
			spec:       "opencl@",
			wantReason: reasonInvalidSourceName,
		},
		{
			name:       "bad options",
			spec:       "vaapi:/dev/dri/renderD128,driver",
			wantReason: reasonFailedParseOptions,
		},
		{
			name:       "bad options without path",
			spec:       "vaapi=x,=1",
			wantReason: reasonFailedParseOptions,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSpec(tt.spec)
			if tt.wantReason != "" {
				require.Error(t, err)
				var errInvalid ErrInvalidSpec
				require.True(t, errors.As(err, &errInvalid), err)
				require.Equal(t, tt.wantReason, errInvalid.Reason)
				require.Equal(t, tt.spec, errInvalid.Spec)
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			tt.want.Spec = tt.spec
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSpecRequestString(t *testing.T) {
	for _, spec := range []string{
		"vaapi",
		"vaapi=va:/dev/dri/renderD128,driver=iHD",
		"opencl=ocl@va",
		"qsv,child_device_type=vaapi",
	} {
		req, err := ParseSpec(spec)
		require.NoError(t, err)
		require.Equal(t, spec, req.String())
	}
}
