// Package sim implements a simulated car-like vehicle that can be driven by the tracker's
// commands in closed loop.
package sim

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/utils"
)

// Vehicle is a kinematic bicycle model: the rear axle moves along the heading and the heading
// turns at v*tan(steering)/wheelbase.
type Vehicle struct {
	wheelbase        float64
	maxSteeringAngle float64

	mu       sync.Mutex
	pose     geometry.Pose
	odometer float64
}

// NewVehicle returns a vehicle at start. Steering inputs are clamped to maxSteeringAngle radians.
func NewVehicle(wheelbase, maxSteeringAngle float64, start geometry.Pose) (*Vehicle, error) {
	if !(wheelbase > 0) {
		return nil, errors.Errorf("wheelbase must be positive, got %v", wheelbase)
	}
	if !(maxSteeringAngle > 0) || maxSteeringAngle >= math.Pi/2 {
		return nil, errors.Errorf("max steering angle must be in (0, pi/2), got %v", maxSteeringAngle)
	}
	return &Vehicle{wheelbase: wheelbase, maxSteeringAngle: maxSteeringAngle, pose: start}, nil
}

// Step integrates the motion over dt seconds with constant steering and velocity.
func (v *Vehicle) Step(steering, velocity, dt float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	steering = utils.Clamp(steering, -v.maxSteeringAngle, v.maxSteeringAngle)
	heading := v.pose.Heading
	v.pose = geometry.Pose{
		Position: v.pose.Position.Add(geometry.Vector{X: math.Cos(heading), Y: math.Sin(heading)}.Mul(velocity * dt)),
		Heading:  utils.NormalizeAngle(heading + velocity*math.Tan(steering)/v.wheelbase*dt),
	}
	v.odometer += math.Abs(velocity * dt)
}

// Pose returns the current pose.
func (v *Vehicle) Pose() geometry.Pose {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pose
}

// Odometer returns the total distance driven.
func (v *Vehicle) Odometer() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.odometer
}

// Command is a steering and velocity pair received by a Sink.
type Command struct {
	SteeringAngle float64
	Velocity      float64
}

// Sink receives control commands for a simulated vehicle. The vehicle is driven with the latest
// command each time Drive is called.
type Sink struct {
	Vehicle *Vehicle

	mu       sync.Mutex
	latest   Command
	received int
}

// NewSink returns a sink driving vehicle.
func NewSink(vehicle *Vehicle) *Sink {
	return &Sink{Vehicle: vehicle}
}

// SendControl records a command.
func (s *Sink) SendControl(ctx context.Context, steeringAngle, velocity float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = Command{SteeringAngle: steeringAngle, Velocity: velocity}
	s.received++
	return nil
}

// Latest returns the most recent command and how many commands were received in total.
func (s *Sink) Latest() (Command, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.received
}

// Drive steps the vehicle for dt seconds with the latest command and returns its new pose.
func (s *Sink) Drive(dt float64) geometry.Pose {
	cmd, _ := s.Latest()
	s.Vehicle.Step(cmd.SteeringAngle, cmd.Velocity, dt)
	return s.Vehicle.Pose()
}
