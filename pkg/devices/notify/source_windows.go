// Plugsync
// Copyright (c) 2026 The Plugsync Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Plugsync.
//
// Plugsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Plugsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Plugsync.  If not, see <http://www.gnu.org/licenses/>.

//go:build windows

package notify

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/plugsync/plugsync/pkg/config"
	"github.com/plugsync/plugsync/pkg/helpers/syncutil"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

const (
	wmDestroy      = 0x0002
	wmClose        = 0x0010
	wmDeviceChange = 0x0219

	windowClassName = "PlugsyncDeviceWatcher"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procPostMessageW     = user32.NewProc("PostMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

var (
	registerOnce sync.Once
	registerErr  error
	instance     windows.Handle

	// Window procedures are shared by every window of the class, so
	// handlers are looked up by window handle.
	handlersMu syncutil.RWMutex
	handlers   = make(map[windows.HWND]Handler)
)

func platformSource(backend string, logger zerolog.Logger) (Source, error) {
	switch backend {
	case config.BackendAuto, config.BackendWin32:
		return NewWin32Source(logger), nil
	default:
		return nil, ErrUnsupported
	}
}

// Win32Source creates a hidden top-level window and pumps its messages.
// Volume arrival and removal broadcasts are only sent to top-level
// windows, so a message-only window would never see them.
type Win32Source struct {
	logger zerolog.Logger
}

func NewWin32Source(logger zerolog.Logger) *Win32Source {
	return &Win32Source{logger: logger}
}

func registerClass() error {
	registerOnce.Do(func() {
		if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
			registerErr = fmt.Errorf("failed to get module handle: %w", err)
			return
		}
		className, err := windows.UTF16PtrFromString(windowClassName)
		if err != nil {
			registerErr = fmt.Errorf("invalid window class name: %w", err)
			return
		}
		wc := wndClassEx{
			WndProc:   windows.NewCallback(wndProc),
			Instance:  instance,
			ClassName: className,
		}
		wc.Size = uint32(unsafe.Sizeof(wc))
		if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
			registerErr = fmt.Errorf("RegisterClassExW failed: %w", err)
		}
	})
	return registerErr
}

func wndProc(hwnd windows.HWND, message uint32, wParam, lParam uintptr) uintptr {
	switch message {
	case wmDeviceChange:
		handlersMu.RLock()
		h := handlers[hwnd]
		handlersMu.RUnlock()
		if h != nil {
			h(uint32(wParam))
		}
		return 1
	case wmClose:
		_, _, _ = procDestroyWindow.Call(uintptr(hwnd))
		return 0
	case wmDestroy:
		handlersMu.Lock()
		delete(handlers, hwnd)
		handlersMu.Unlock()
		_, _, _ = procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(message), wParam, lParam)
	return r
}

func (s *Win32Source) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	if err := registerClass(); err != nil {
		return nil, err
	}

	type created struct {
		err  error
		hwnd windows.HWND
	}
	ready := make(chan created, 1)
	sub := &win32Subscription{done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		// The window belongs to this thread and so does its message queue.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		className, _ := windows.UTF16PtrFromString(windowClassName)
		hwndRaw, _, err := procCreateWindowExW.Call(
			0,
			uintptr(unsafe.Pointer(className)),
			uintptr(unsafe.Pointer(className)),
			0, // no WS_VISIBLE
			0, 0, 0, 0,
			0, 0,
			uintptr(instance),
			0,
		)
		if hwndRaw == 0 {
			ready <- created{err: fmt.Errorf("CreateWindowExW failed: %w", err)}
			return
		}
		hwnd := windows.HWND(hwndRaw)

		handlersMu.Lock()
		handlers[hwnd] = handler
		handlersMu.Unlock()
		ready <- created{hwnd: hwnd}

		var m msg
		for {
			r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			switch int32(r) {
			case 0:
				return
			case -1:
				s.logger.Error().Err(err).Msg("GetMessageW failed, stopping device notifications")
				return
			}
			_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
			_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
		}
	}()

	res := <-ready
	if res.err != nil {
		<-sub.done
		return nil, res.err
	}
	sub.hwnd = res.hwnd

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	s.logger.Debug().Uint64("hwnd", uint64(res.hwnd)).Msg("listening for WM_DEVICECHANGE")
	return sub, nil
}

type win32Subscription struct {
	done      chan struct{}
	hwnd      windows.HWND
	closeOnce sync.Once
}

var errPostMessage = errors.New("PostMessageW failed")

func (s *win32Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		select {
		case <-s.done:
			return
		default:
		}
		if r, _, callErr := procPostMessageW.Call(uintptr(s.hwnd), wmClose, 0, 0); r == 0 {
			err = fmt.Errorf("%w: %w", errPostMessage, callErr)
			return
		}
		<-s.done
	})
	return err
}
