// Package traci is a minimal TraCI client for driving a SUMO process:
// it launches the engine, dials its TraCI port, and exposes the handful
// of lane and vehicle commands the chaos controller needs. It is not a
// general TraCI binding.
package traci

import (
	"errors"
	"fmt"
	"net"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/sumo-chaos/sumo-chaos/chaos"
)

// Client owns the TCP connection to a SUMO process and, when Start
// launched it, the process itself. The zero value is unconnected.
type Client struct {
	conn net.Conn
	proc *exec.Cmd
}

var _ chaos.Engine = (*Client)(nil)

// NewClient returns an unconnected client; Start brings up the engine.
func NewClient() *Client {
	return &Client{}
}

// Start launches SUMO with the given scenario configuration and
// connects to its TraCI port. gui selects sumo-gui over headless sumo.
func (c *Client) Start(cfgPath string, gui bool) error {
	if c.conn != nil {
		return errors.New("traci: already connected")
	}
	conn, proc, err := launch(cfgPath, gui)
	if err != nil {
		return err
	}
	c.conn, c.proc = conn, proc

	api, version, err := c.getVersion()
	if err != nil {
		c.teardown()
		return fmt.Errorf("traci handshake: %w", err)
	}
	logrus.Infof("connected to %s (TraCI API %d)", version, api)
	return nil
}

// Close tells the engine to shut down and releases the connection and
// process. Safe to call on an unconnected client.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.roundTripNoResult(cmdClose, nil)
	c.teardown()
	return err
}

func (c *Client) teardown() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.proc != nil {
		// SUMO exits on CMD_CLOSE; reap it so no zombie lingers.
		_ = c.proc.Wait()
		c.proc = nil
	}
}

// LaneMaxSpeed returns the lane's current speed limit in m/s.
func (c *Client) LaneMaxSpeed(laneID string) (float64, error) {
	return c.getDouble(cmdGetLaneVar, varMaxSpeed, laneID)
}

// SetLaneMaxSpeed overrides the lane's speed limit in m/s.
func (c *Client) SetLaneMaxSpeed(laneID string, speed float64) error {
	var p packer
	p.writeUByte(typeDouble)
	p.writeDouble(speed)
	return c.setVariable(cmdSetLaneVar, varMaxSpeed, laneID, p.bytes())
}

// LaneAllowed returns the vehicle classes permitted on the lane.
func (c *Client) LaneAllowed(laneID string) ([]string, error) {
	return c.getStringList(cmdGetLaneVar, varLaneAllowed, laneID)
}

// SetLaneAllowed replaces the lane's permitted vehicle classes. An
// empty list closes the lane to all traffic.
func (c *Client) SetLaneAllowed(laneID string, classes []string) error {
	var p packer
	p.writeUByte(typeStringList)
	p.writeStringList(classes)
	return c.setVariable(cmdSetLaneVar, varLaneAllowed, laneID, p.bytes())
}

// VehicleIDs lists the vehicles currently in the simulation.
func (c *Client) VehicleIDs() ([]string, error) {
	return c.getStringList(cmdGetVehicleVar, varIDList, "")
}

// VehicleSpeed returns the vehicle's current speed in m/s.
func (c *Client) VehicleSpeed(vehID string) (float64, error) {
	return c.getDouble(cmdGetVehicleVar, varSpeed, vehID)
}

// VehicleAccumulatedWaitingTime returns the vehicle's accumulated
// waiting time in seconds.
func (c *Client) VehicleAccumulatedWaitingTime(vehID string) (float64, error) {
	return c.getDouble(cmdGetVehicleVar, varAccumulatedWait, vehID)
}

// VehicleCO2Emission returns the vehicle's CO2 emission in mg/s.
func (c *Client) VehicleCO2Emission(vehID string) (float64, error) {
	return c.getDouble(cmdGetVehicleVar, varCO2Emission, vehID)
}

// getVersion performs the version handshake.
func (c *Client) getVersion() (int32, string, error) {
	u, err := c.roundTrip(cmdGetVersion, nil)
	if err != nil {
		return 0, "", err
	}
	if _, err := readCommandHeader(u); err != nil {
		return 0, "", err
	}
	api, err := u.readInt()
	if err != nil {
		return 0, "", err
	}
	version, err := u.readString()
	if err != nil {
		return 0, "", err
	}
	return api, version, nil
}

// getVariable issues a get command and positions the returned unpacker
// at the typed value of the result.
func (c *Client) getVariable(cmd, variable byte, objID string) (*unpacker, error) {
	var p packer
	p.writeUByte(variable)
	p.writeString(objID)
	u, err := c.roundTrip(cmd, p.bytes())
	if err != nil {
		return nil, err
	}

	id, err := readCommandHeader(u)
	if err != nil {
		return nil, fmt.Errorf("reading result header: %w", err)
	}
	if id != cmd+responseOffset {
		return nil, fmt.Errorf("result command 0x%02X, expected 0x%02X", id, cmd+responseOffset)
	}
	if _, err := u.readUByte(); err != nil { // echoed variable
		return nil, err
	}
	if _, err := u.readString(); err != nil { // echoed object ID
		return nil, err
	}
	return u, nil
}

func (c *Client) getDouble(cmd, variable byte, objID string) (float64, error) {
	u, err := c.getVariable(cmd, variable, objID)
	if err != nil {
		return 0, err
	}
	t, err := u.readUByte()
	if err != nil {
		return 0, err
	}
	if t != typeDouble {
		return 0, fmt.Errorf("result type 0x%02X, expected double", t)
	}
	return u.readDouble()
}

func (c *Client) getStringList(cmd, variable byte, objID string) ([]string, error) {
	u, err := c.getVariable(cmd, variable, objID)
	if err != nil {
		return nil, err
	}
	t, err := u.readUByte()
	if err != nil {
		return nil, err
	}
	if t != typeStringList {
		return nil, fmt.Errorf("result type 0x%02X, expected string list", t)
	}
	return u.readStringList()
}

// setVariable issues a set command carrying an already-typed value.
func (c *Client) setVariable(cmd, variable byte, objID string, typedValue []byte) error {
	var p packer
	p.writeUByte(variable)
	p.writeString(objID)
	p.buf.Write(typedValue)
	return c.roundTripNoResult(cmd, p.bytes())
}

// roundTrip sends one command and returns an unpacker positioned after
// the (checked) status response.
func (c *Client) roundTrip(cmd byte, payload []byte) (*unpacker, error) {
	if c.conn == nil {
		return nil, errors.New("traci: not connected")
	}
	if err := writeMessage(c.conn, frameCommand(cmd, payload)); err != nil {
		return nil, fmt.Errorf("sending command 0x%02X: %w", cmd, err)
	}
	u, err := readMessage(c.conn)
	if err != nil {
		return nil, fmt.Errorf("reading response to 0x%02X: %w", cmd, err)
	}
	if err := readStatus(u, cmd); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) roundTripNoResult(cmd byte, payload []byte) error {
	_, err := c.roundTrip(cmd, payload)
	return err
}
