//go:build !linux

package camera
