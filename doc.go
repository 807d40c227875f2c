// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hetmem provides residency-polymorphic memory operations and a
// kernel benchmarking harness on top of the GUDA device runtime.
//
// A Buffer carries the memory space it was allocated in as a type
// parameter, Host or Device, so a device buffer can never be passed where
// a host buffer is expected:
//
//	a, err := hetmem.Allocate[hetmem.Host](n)
//	d, err := hetmem.Allocate[hetmem.Device](n)
//	err = hetmem.Copy(n, a, d)                      // host to device
//	ok, err := hetmem.Compare[Mat4f](count, d, d2) // staged through host
//
// Every call into the device runtime goes through Check with a severity
// chosen at the call site. Fatal failures come back as *FatalError and are
// turned into a process exit by Exit at the program boundary.
package hetmem
