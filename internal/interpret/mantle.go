package interpret

import "tracereplay/internal/packet"

// Mantle is the call table of the Mantle tracer.
var Mantle = NewTable(packet.TracerMantle, []string{
	"grInitAndEnumerateGpus",
	"grGetGpuInfo",
	"grCreateDevice",
	"grDestroyDevice",
	"grGetExtensionSupport",
	"grGetDeviceQueue",
	"grQueueSubmit",
	"grQueueWaitIdle",
	"grDeviceWaitIdle",
	"grAllocMemory",
	"grFreeMemory",
	"grMapMemory",
	"grUnmapMemory",
	"grDestroyObject",
	"grGetObjectInfo",
	"grBindObjectMemory",
	"grCreateFence",
	"grWaitForFences",
	"grCreateImage",
	"grCreateImageView",
	"grCreateShader",
	"grCreateGraphicsPipeline",
	"grCreateComputePipeline",
	"grCreateCommandBuffer",
	"grBeginCommandBuffer",
	"grEndCommandBuffer",
	"grCmdBindPipeline",
	"grCmdDraw",
	"grCmdDrawIndexed",
	"grCmdDispatch",
	"grWsiWinQueuePresent",
})
