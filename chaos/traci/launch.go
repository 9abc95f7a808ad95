package traci

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dialAttempts = 50
	dialInterval = 100 * time.Millisecond
)

// launch resolves the SUMO binary under SUMO_HOME, starts it serving
// TraCI on a free port, and dials it with retries until the engine
// accepts the connection.
func launch(cfgPath string, gui bool) (net.Conn, *exec.Cmd, error) {
	binDir, err := sumoBinDir()
	if err != nil {
		return nil, nil, err
	}
	name := "sumo"
	if gui {
		name = "sumo-gui"
	}
	bin, err := resolveBinary(binDir, name)
	if err != nil {
		return nil, nil, err
	}

	port, err := freePort()
	if err != nil {
		return nil, nil, fmt.Errorf("allocating TraCI port: %w", err)
	}

	proc := exec.Command(bin, "-c", cfgPath, "--start", "--remote-port", strconv.Itoa(port))
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr
	logrus.Debugf("launching %s -c %s --start --remote-port %d", bin, cfgPath, port)
	if err := proc.Start(); err != nil {
		return nil, nil, fmt.Errorf("launching %s: %w", name, err)
	}

	conn, err := dial(port)
	if err != nil {
		_ = proc.Process.Kill()
		_ = proc.Wait()
		return nil, nil, fmt.Errorf("connecting to %s: %w", name, err)
	}
	return conn, proc, nil
}

// sumoBinDir locates the engine installation via SUMO_HOME and prepends
// its bin directory to PATH, the same way the Python tooling extends
// sys.path with SUMO's tools directory. A missing SUMO_HOME is fatal to
// startup.
func sumoBinDir() (string, error) {
	home := os.Getenv("SUMO_HOME")
	if home == "" {
		return "", errors.New("environment variable SUMO_HOME is not set")
	}
	binDir := filepath.Join(home, "bin")
	os.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return binDir, nil
}

// resolveBinary prefers the binary inside the installation, falling
// back to PATH lookup.
func resolveBinary(binDir, name string) (string, error) {
	candidate := filepath.Join(binDir, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("binary %q not found under %s or PATH: %w", name, binDir, err)
	}
	return path, nil
}

// freePort asks the kernel for an unused TCP port for the TraCI server.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// dial retries until SUMO opens its TraCI port; the engine needs a
// moment between process start and listening.
func dial(port int) (net.Conn, error) {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	var lastErr error
	for i := 0; i < dialAttempts; i++ {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(dialInterval)
	}
	return nil, fmt.Errorf("engine did not accept a connection on %s: %w", addr, lastErr)
}
