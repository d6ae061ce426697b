//go:build darwin

package wallpaper

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa

#include <Cocoa/Cocoa.h>
#include <objc/runtime.h>

// hitTest override that swallows every event. Installed on the content and
// backing views so click-through holds even where ignoresMouseEvents has
// platform bugs.
static NSView *driftHitTestNil(id self, SEL _cmd, NSPoint point) {
	return nil;
}

static void driftOverrideHitTest(NSView *view) {
	if (view == nil) {
		return;
	}
	Class cls = object_getClass(view);
	SEL sel = @selector(hitTest:);
	IMP imp = (IMP)driftHitTestNil;
	if (!class_addMethod(cls, sel, imp, "@@:{CGPoint=dd}")) {
		Method m = class_getInstanceMethod(cls, sel);
		if (m != NULL) {
			method_setImplementation(m, imp);
		}
	}
}

// AppKit origins are bottom-left; the caller passes top-left desktop
// coordinates.
static double driftFlipY(double y, double h) {
	NSScreen *primary = [[NSScreen screens] firstObject];
	if (primary == nil) {
		return y;
	}
	return [primary frame].size.height - (y + h);
}

void driftEmbedWindow(void *window, double x, double y, double w, double h) {
	NSWindow *win = (__bridge NSWindow *)window;

	[win setStyleMask:NSWindowStyleMaskBorderless];
	[win setHasShadow:NO];
	[win setOpaque:NO];
	[win setBackgroundColor:[NSColor clearColor]];

	// Desktop level, same depth as the system wallpaper.
	[win setLevel:kCGDesktopWindowLevel];

	[win setHidesOnDeactivate:NO];
	[win setReleasedWhenClosed:NO];

	// Slightly under 1.0 nudges the window server into click-through.
	[win setAlphaValue:0.99];

	[win setCollectionBehavior:NSWindowCollectionBehaviorCanJoinAllSpaces |
	                           NSWindowCollectionBehaviorStationary |
	                           NSWindowCollectionBehaviorIgnoresCycle];

	[win setIgnoresMouseEvents:YES];
	[win setAcceptsMouseMovedEvents:NO];
	[win setExcludedFromWindowsMenu:YES];

	NSView *content = [win contentView];
	driftOverrideHitTest(content);
	NSView *backing = [[content subviews] firstObject];
	if (backing != nil && backing != content) {
		driftOverrideHitTest(backing);
	}

	[win orderBack:nil];

	NSRect frame = NSMakeRect(x, driftFlipY(y, h), w, h);
	[win setFrame:frame display:YES];

	if (content != nil) {
		[content setAutoresizingMask:NSViewWidthSizable | NSViewHeightSizable];
		[content setFrame:NSMakeRect(0, 0, w, h)];
	}
}

void driftReassertWindow(void *window) {
	NSWindow *win = (__bridge NSWindow *)window;

	// First show can silently reset these.
	[win setLevel:kCGDesktopWindowLevel];
	[win setIgnoresMouseEvents:YES];
	[win orderBack:nil];
}

void driftSetWindowFrame(void *window, double x, double y, double w, double h) {
	NSWindow *win = (__bridge NSWindow *)window;
	[win setFrame:NSMakeRect(x, driftFlipY(y, h), w, h) display:YES];
}
*/
import "C"

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Marceswan/driftpaper/internal/display"
)

func embedWindow(win *glfw.Window, desc display.Descriptor) error {
	ns := win.GetCocoaWindow()
	if ns == nil {
		return fmt.Errorf("no NSWindow handle for display %d", desc.Index)
	}
	C.driftEmbedWindow(ns,
		C.double(desc.X), C.double(desc.Y),
		C.double(desc.LogicalWidth), C.double(desc.LogicalHeight))
	return nil
}

func reassertAfterShow(win *glfw.Window) {
	ns := win.GetCocoaWindow()
	if ns == nil {
		return
	}
	C.driftReassertWindow(ns)
}

// MoveToDisplay repositions an embedded window after a topology change.
func MoveToDisplay(win *glfw.Window, desc display.Descriptor) {
	ns := win.GetCocoaWindow()
	if ns == nil {
		return
	}
	C.driftSetWindowFrame(ns,
		C.double(desc.X), C.double(desc.Y),
		C.double(desc.LogicalWidth), C.double(desc.LogicalHeight))
}
