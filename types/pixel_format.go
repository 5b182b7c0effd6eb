package types

// PixelFormat is a pixel format identified by its libav name (for example
// "vaapi", "cuda" or "nv12").
type PixelFormat string

const (
	PixelFormatNone         PixelFormat = ""
	PixelFormatNV12         PixelFormat = "nv12"
	PixelFormatYUV420P      PixelFormat = "yuv420p"
	PixelFormatVAAPI        PixelFormat = "vaapi"
	PixelFormatCUDA         PixelFormat = "cuda"
	PixelFormatQSV          PixelFormat = "qsv"
	PixelFormatVideoToolbox PixelFormat = "videotoolbox_vld"
	PixelFormatD3D11        PixelFormat = "d3d11"
	PixelFormatVulkan       PixelFormat = "vulkan"
	PixelFormatDRMPrime     PixelFormat = "drm_prime"
	PixelFormatMediaCodec   PixelFormat = "mediacodec"
)

func (pf PixelFormat) String() string {
	if pf == PixelFormatNone {
		return "none"
	}
	return string(pf)
}
