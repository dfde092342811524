package util

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo contains information about the host system.
type SystemInfo struct {
	Hostname        string
	NumCPU          int
	PhysicalCores   int
	OS              string
	Arch            string
	TotalMemory     uint64
	AvailableMemory uint64
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	info := SystemInfo{
		Hostname:      hostname,
		NumCPU:        LogicalCores(),
		PhysicalCores: PhysicalCores(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
		info.AvailableMemory = vm.Available
	}
	return info
}

// AvailableMemoryBytes returns the available memory in bytes.
// Returns 0 if memory cannot be determined.
func AvailableMemoryBytes() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Available
}

// MaxPermitsForMemory calculates how many items of itemBytes each fit into
// memFraction of the available memory. Returns at least 1.
func MaxPermitsForMemory(itemBytes uint64, memFraction float64) int {
	available := AvailableMemoryBytes()
	if available == 0 || itemBytes == 0 {
		return 1
	}

	usable := uint64(float64(available) * memFraction)
	if usable < itemBytes {
		return 1
	}

	return max(int(usable/itemBytes), 1)
}

// LogicalCores returns the number of logical CPU cores (includes hyperthreads).
func LogicalCores() int {
	return runtime.NumCPU()
}

// PhysicalCores returns the number of physical CPU cores.
// Falls back to LogicalCores()/2 if detection fails.
func PhysicalCores() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return min(n, LogicalCores())
	}
	logical := LogicalCores()
	if logical > 1 {
		return logical / 2
	}
	return 1
}
