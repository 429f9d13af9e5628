package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadROM reads a program image from path. Bytes past maxSize are dropped
// with a warning; pass 0 to keep everything. Only a missing or unreadable
// file is an error.
func ReadROM(path string, maxSize int) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	rom, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read ROM: %w", err)
	}
	if maxSize > 0 && len(rom) > maxSize {
		commonlog.GetLogger("utils").Warningf("%s: ROM is %d bytes, truncating to %d", fullPath, len(rom), maxSize)
		rom = rom[:maxSize]
	}
	return rom, nil
}

// LoadProgram returns the ROM image for path, assembling it first when it
// is assembly source.
func LoadProgram(path string) ([]byte, error) {
	if !IsAssemblySource(path) {
		return ReadROM(path, chip8.MaxROMSize)
	}

	src, err := ReadROM(path, 0)
	if err != nil {
		return nil, err
	}
	rom, _, err := asm.Assemble(string(src))
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", path, err)
	}
	return rom, nil
}

// IsAssemblySource reports whether path names an assembly source file
// rather than a binary ROM.
func IsAssemblySource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asm", ".s":
		return true
	}
	return false
}

// ScreenshotName returns a fresh file name for the n-th screenshot of rom,
// placed next to the ROM.
func ScreenshotName(rom string, n int) string {
	base := strings.TrimSuffix(filepath.Base(rom), filepath.Ext(rom))
	if base == "" || base == "." {
		base = "chip8"
	}
	return filepath.Join(filepath.Dir(rom), fmt.Sprintf("%s-%03d.png", base, n))
}
