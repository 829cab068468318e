package interpret

import "tracereplay/internal/packet"

// XGL is the call table of the XGL tracer. Order is part of the recording
// format; append only.
var XGL = NewTable(packet.TracerXGL, []string{
	"xglApiVersion",
	"xglCreateInstance",
	"xglDestroyInstance",
	"xglEnumerateGpus",
	"xglGetGpuInfo",
	"xglGetProcAddr",
	"xglCreateDevice",
	"xglDestroyDevice",
	"xglGetExtensionSupport",
	"xglEnumerateLayers",
	"xglGetDeviceQueue",
	"xglQueueSubmit",
	"xglQueueSetGlobalMemReferences",
	"xglQueueWaitIdle",
	"xglDeviceWaitIdle",
	"xglAllocMemory",
	"xglFreeMemory",
	"xglSetMemoryPriority",
	"xglMapMemory",
	"xglUnmapMemory",
	"xglPinSystemMemory",
	"xglGetMultiGpuCompatibility",
	"xglOpenSharedMemory",
	"xglOpenSharedQueueSemaphore",
	"xglOpenPeerMemory",
	"xglOpenPeerImage",
	"xglDestroyObject",
	"xglGetObjectInfo",
	"xglBindObjectMemory",
	"xglCreateFence",
	"xglGetFenceStatus",
	"xglWaitForFences",
	"xglCreateQueueSemaphore",
	"xglSignalQueueSemaphore",
	"xglWaitQueueSemaphore",
	"xglCreateEvent",
	"xglGetEventStatus",
	"xglSetEvent",
	"xglResetEvent",
	"xglCreateQueryPool",
	"xglGetQueryPoolResults",
	"xglGetFormatInfo",
	"xglCreateImage",
	"xglGetImageSubresourceInfo",
	"xglCreateImageView",
	"xglCreateColorAttachmentView",
	"xglCreateDepthStencilView",
	"xglCreateShader",
	"xglCreateGraphicsPipeline",
	"xglCreateComputePipeline",
	"xglStorePipeline",
	"xglLoadPipeline",
	"xglCreateSampler",
	"xglCreateDescriptorSet",
	"xglBeginDescriptorSetUpdate",
	"xglEndDescriptorSetUpdate",
	"xglAttachSamplerDescriptors",
	"xglAttachImageViewDescriptors",
	"xglAttachMemoryViewDescriptors",
	"xglAttachNestedDescriptors",
	"xglClearDescriptorSetSlots",
	"xglCreateViewportState",
	"xglCreateRasterState",
	"xglCreateMsaaState",
	"xglCreateColorBlendState",
	"xglCreateDepthStencilState",
	"xglCreateCommandBuffer",
	"xglBeginCommandBuffer",
	"xglEndCommandBuffer",
	"xglResetCommandBuffer",
	"xglCmdBindPipeline",
	"xglCmdBindStateObject",
	"xglCmdBindDescriptorSet",
	"xglCmdBindVertexBuffer",
	"xglCmdBindIndexBuffer",
	"xglCmdDraw",
	"xglCmdDrawIndexed",
	"xglCmdDrawIndirect",
	"xglCmdDrawIndexedIndirect",
	"xglCmdDispatch",
	"xglCmdDispatchIndirect",
	"xglCmdCopyMemory",
	"xglCmdCopyImage",
	"xglCmdCopyMemoryToImage",
	"xglCmdCopyImageToMemory",
	"xglCmdUpdateMemory",
	"xglCmdFillMemory",
	"xglCmdClearColorImage",
	"xglCmdClearDepthStencil",
	"xglCmdSetEvent",
	"xglCmdResetEvent",
	"xglCmdBeginQuery",
	"xglCmdEndQuery",
	"xglCmdResetQueryPool",
	"xglCmdWriteTimestamp",
	"xglWsiX11AssociateConnection",
	"xglWsiX11GetMSC",
	"xglWsiX11CreatePresentableImage",
	"xglWsiX11QueuePresent",
})
