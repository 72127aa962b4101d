package robot

import (
	"context"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Arm is the show arm on a feetech servo bus.
type Arm struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
}

// NewArm opens the bus and groups the calibrated servos.
func NewArm(port string, cal Calibration) (*Arm, error) {
	if len(cal) == 0 {
		return nil, errors.New("arm is not calibrated")
	}

	// Open serial bus
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open bus")
	}

	// Create servo group from calibration IDs
	group := feetech.NewServoGroupByIDs(bus, cal.MotorIDs()...)

	return &Arm{
		bus:         bus,
		group:       group,
		calibration: cal,
	}, nil
}

// Close releases torque and closes the bus.
func (a *Arm) Close() error {
	err := errors.Wrap(a.group.DisableAll(context.Background()), "disable torque")
	return multierr.Append(err, a.bus.Close())
}

// Raise enables torque and moves into the show pose.
func (a *Arm) Raise(ctx context.Context) error {
	if err := a.group.EnableAll(ctx); err != nil {
		return errors.Wrap(err, "enable torque")
	}
	return a.WritePositions(ctx, ShowPose())
}

// Lower moves back into the rest pose. Torque stays on.
func (a *Arm) Lower(ctx context.Context) error {
	return a.WritePositions(ctx, RestPose())
}

// ReadPositions reads current joint angles in radians.
func (a *Arm) ReadPositions(ctx context.Context) (map[MotorName]float64, error) {
	// Read raw positions using sync read
	rawPositions, err := a.group.Positions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read positions")
	}

	positions := make(map[MotorName]float64, len(rawPositions))
	for id, raw := range rawPositions {
		name, cal, ok := a.calibration.ByID(id)
		if !ok {
			continue
		}
		positions[name] = cal.Radians(raw)
	}
	return positions, nil
}

// WritePositions moves the named joints to angles in radians.
func (a *Arm) WritePositions(ctx context.Context, positions map[MotorName]float64) error {
	rawPositions := make(feetech.PositionMap, len(positions))
	for name, rad := range positions {
		cal, ok := a.calibration[name]
		if !ok {
			continue
		}
		rawPositions[cal.ID] = cal.Raw(rad)
	}

	// Write using sync write
	if err := a.group.SetPositions(ctx, rawPositions); err != nil {
		return errors.Wrap(err, "write positions")
	}
	return nil
}

// JointSetter positions named joints directly, as a simulated body does.
type JointSetter interface {
	SetJoint(name string, rad float64)
}

// PoseArm plays the show gesture on a body without a servo bus.
type PoseArm struct {
	joints JointSetter
}

// NewPoseArm drives the joints of j.
func NewPoseArm(j JointSetter) *PoseArm {
	return &PoseArm{joints: j}
}

func (a *PoseArm) Raise(context.Context) error {
	a.apply(ShowPose())
	return nil
}

func (a *PoseArm) Lower(context.Context) error {
	a.apply(RestPose())
	return nil
}

func (a *PoseArm) apply(pose map[MotorName]float64) {
	for _, name := range AllMotors() {
		if rad, ok := pose[name]; ok {
			a.joints.SetJoint(string(name), rad)
		}
	}
}
