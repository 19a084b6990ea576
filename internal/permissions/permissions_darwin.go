//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework AVFoundation
#import <AVFoundation/AVFoundation.h>

int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}
*/
import "C"

import (
	"fmt"
	"os"
)

// CheckMicrophone returns the current microphone permission status
func CheckMicrophone() Status {
	return Status(C.checkMicrophonePermission())
}

// RequestMicrophone triggers the system microphone permission dialog
func RequestMicrophone() {
	C.requestMicrophonePermission()
}

// EnsureMicrophone returns nil when recording is allowed. Otherwise it asks
// for access and returns ErrMicrophoneDenied.
func EnsureMicrophone() error {
	status := CheckMicrophone()
	if status == Authorized {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Microphone permission required (%s)\n", status)
	if status == NotDetermined {
		RequestMicrophone()
	} else {
		fmt.Fprintln(os.Stderr, "   Go to: System Settings → Privacy & Security → Microphone")
	}
	return ErrMicrophoneDenied
}
