//go:build windows

package wallpaper

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/sys/windows"

	"github.com/Marceswan/driftpaper/internal/display"
	"github.com/Marceswan/driftpaper/internal/logger"
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW           = user32.NewProc("FindWindowW")
	procFindWindowExW         = user32.NewProc("FindWindowExW")
	procSendMessageTimeoutW   = user32.NewProc("SendMessageTimeoutW")
	procEnumWindows           = user32.NewProc("EnumWindows")
	procGetWindowLongPtrW     = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW     = user32.NewProc("SetWindowLongPtrW")
	procSetParent             = user32.NewProc("SetParent")
	procSetLayeredWindowAttrs = user32.NewProc("SetLayeredWindowAttributes")
	procSetWindowPos          = user32.NewProc("SetWindowPos")
	procShowWindow            = user32.NewProc("ShowWindow")
	procGetWindowRect         = user32.NewProc("GetWindowRect")
)

const (
	gwlStyle   = ^uintptr(15) // -16
	gwlExStyle = ^uintptr(19) // -20

	wsChild    = 0x40000000
	wsDisabled = 0x08000000
	wsPopup    = 0x80000000

	wsExLayered = 0x00080000
	lwaAlpha    = 0x00000002

	swpNoSize       = 0x0001
	swpNoMove       = 0x0002
	swpNoActivate   = 0x0010
	swpFrameChanged = 0x0020

	smtoNormal = 0x0000
	swShowNA   = 8

	// Undocumented Progman message that makes the shell materialize the
	// WorkerW wallpaper container.
	wmSpawnWorkerW = 0x052C
)

type winRect struct {
	left, top, right, bottom int32
}

func findWindow(class string) uintptr {
	cls, _ := windows.UTF16PtrFromString(class)
	hwnd, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(cls)), 0)
	return hwnd
}

func findWindowEx(parent, after uintptr, class string) uintptr {
	cls, _ := windows.UTF16PtrFromString(class)
	hwnd, _, _ := procFindWindowExW.Call(parent, after, uintptr(unsafe.Pointer(cls)), 0)
	return hwnd
}

// findWorkerW walks the top-level windows looking for the one hosting the
// SHELLDLL_DefView desktop-icons view, then returns the WorkerW sibling that
// follows it.
func findWorkerW() uintptr {
	var workerw uintptr
	cb := windows.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
		if findWindowEx(hwnd, 0, "SHELLDLL_DefView") != 0 {
			if w := findWindowEx(0, hwnd, "WorkerW"); w != 0 {
				workerw = w
				return 0 // stop enumeration
			}
		}
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return workerw
}

func embedWindow(win *glfw.Window, desc display.Descriptor) error {
	hwnd := uintptr(unsafe.Pointer(win.GetWin32Window()))
	if hwnd == 0 {
		return fmt.Errorf("no HWND for display %d", desc.Index)
	}

	log := logger.WithComponent("wallpaper")

	progman := findWindow("Progman")
	if progman == 0 {
		return fmt.Errorf("%w: Progman missing", ErrShellNotFound)
	}

	// Ask the shell to materialize its wallpaper container, then give it a
	// moment to do so.
	var result uintptr
	procSendMessageTimeoutW.Call(progman, wmSpawnWorkerW, 0xD, 0x1,
		smtoNormal, 1000, uintptr(unsafe.Pointer(&result)))
	time.Sleep(100 * time.Millisecond)

	shellView := findWindowEx(progman, 0, "SHELLDLL_DefView")
	workerw := findWorkerW()

	var rect winRect
	procGetWindowRect.Call(progman, uintptr(unsafe.Pointer(&rect)))
	progmanW := uintptr(rect.right - rect.left)
	progmanH := uintptr(rect.bottom - rect.top)

	switch {
	case shellView != 0:
		// The icons view lives inside Progman: parent there and slot the
		// window directly beneath the icons so they stay on top.
		setChildStyle(hwnd)
		procSetParent.Call(hwnd, progman)
		makeLayeredOpaque(hwnd)
		procSetWindowPos.Call(hwnd, shellView, 0, 0, progmanW, progmanH,
			swpNoActivate|swpFrameChanged)
		if workerw != 0 {
			// Keep the shell's own WorkerW behind us.
			procSetWindowPos.Call(workerw, hwnd, 0, 0, 0, 0,
				swpNoMove|swpNoSize|swpNoActivate)
		}
		procShowWindow.Call(hwnd, swShowNA)
		log.Info().Int("display", desc.Index).Msg("Embedded beneath SHELLDLL_DefView")
		return nil

	case workerw != 0:
		// Older shell layout: the WorkerW container itself is the parent.
		setChildStyle(hwnd)
		procSetParent.Call(hwnd, workerw)
		makeLayeredOpaque(hwnd)
		procSetWindowPos.Call(hwnd, 0, 0, 0,
			uintptr(desc.PhysicalWidth), uintptr(desc.PhysicalHeight),
			swpNoActivate|swpFrameChanged)
		procShowWindow.Call(hwnd, swShowNA)
		log.Info().Int("display", desc.Index).Msg("Embedded under WorkerW")
		return nil

	default:
		return fmt.Errorf("%w: no SHELLDLL_DefView or WorkerW", ErrShellNotFound)
	}
}

func setChildStyle(hwnd uintptr) {
	style, _, _ := procGetWindowLongPtrW.Call(hwnd, gwlStyle)
	style = (style &^ uintptr(wsPopup) &^ uintptr(wsDisabled)) | wsChild
	procSetWindowLongPtrW.Call(hwnd, gwlStyle, style)
}

func makeLayeredOpaque(hwnd uintptr) {
	exStyle, _, _ := procGetWindowLongPtrW.Call(hwnd, gwlExStyle)
	procSetWindowLongPtrW.Call(hwnd, gwlExStyle, exStyle|wsExLayered)
	procSetLayeredWindowAttrs.Call(hwnd, 0, 255, lwaAlpha)
}

func reassertAfterShow(win *glfw.Window) {
	// Nothing resets on show once the window is a shell child.
}

// MoveToDisplay repositions an embedded window after a topology change.
func MoveToDisplay(win *glfw.Window, desc display.Descriptor) {
	win.SetPos(desc.X, desc.Y)
	win.SetSize(desc.LogicalWidth, desc.LogicalHeight)
}
