package serialport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// presetBauds are the speeds this package hands to
// github.com/pkg/term's SetSpeed. Anything else goes through the
// custom-baud ioctl path below.
var presetBauds = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true,
	19200: true, 38400: true, 57600: true, 115200: true,
}

// rawDevice is a serial device opened directly with unix.Open,
// bypassing github.com/pkg/term, for baud rates its preset-speed
// switch doesn't cover (420000 is the default here).
type rawDevice struct {
	fd int
}

/*-------------------------------------------------------------
 *
 * Name:	openCustomBaud
 *
 * Purpose:	Open a serial device at a non-standard baud rate via
 *		the Linux termios2/BOTHER ioctl — the same technique
 *		the RF module's own sender implementation uses, since
 *		POSIX termios has no portable way to request an
 *		arbitrary speed.
 *
 * Inputs:	path	- device node, e.g. /dev/ttyUSB0.
 *		baud	- requested baud rate.
 *
 * Returns:	Open rawDevice, or an error if the device or the ioctl
 *		calls fail.
 *
 *--------------------------------------------------------------*/

func openCustomBaud(path string, baud int) (*rawDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NDELAY, 0)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", path, err)
	}

	tty, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serialport: TCGETS2 %s: %w", path, err)
	}

	tty.Cflag &^= unix.CBAUD
	tty.Cflag |= unix.BOTHER
	tty.Ispeed = uint32(baud)
	tty.Ospeed = uint32(baud)

	tty.Cflag = (tty.Cflag &^ unix.CSIZE) | unix.CS8 | unix.CLOCAL | unix.CREAD
	tty.Cflag &^= unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	tty.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY
	tty.Lflag = 0
	tty.Oflag = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS2, tty); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serialport: TCSETS2 %s: %w", path, err)
	}
	unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH)

	return &rawDevice{fd: fd}, nil
}

func (d *rawDevice) Read(b []byte) (int, error)  { return unix.Read(d.fd, b) }
func (d *rawDevice) Write(b []byte) (int, error) { return unix.Write(d.fd, b) }
func (d *rawDevice) Close() error                { return unix.Close(d.fd) }
