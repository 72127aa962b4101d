// Package robot provides the show arm and the tour guide configuration file.
package robot

// MotorName identifies a motor in the arm.
type MotorName string

// Motor names of the right arm used for the show gesture.
const (
	ShoulderR MotorName = "ShoulderR"
	ArmUpperR MotorName = "ArmUpperR"
	ArmLowerR MotorName = "ArmLowerR"
)

// AllMotors returns all motor names in order (matching servo IDs 1-3).
func AllMotors() []MotorName {
	return []MotorName{
		ShoulderR,
		ArmUpperR,
		ArmLowerR,
	}
}

// ShowPose is the raised-arm pose, in radians, presented at an exhibit.
func ShowPose() map[MotorName]float64 {
	return map[MotorName]float64{
		ShoulderR: 2.3,
		ArmUpperR: -0.68,
		ArmLowerR: -1.65,
	}
}

// RestPose lets the arm hang.
func RestPose() map[MotorName]float64 {
	return map[MotorName]float64{
		ShoulderR: 0,
		ArmUpperR: 0,
		ArmLowerR: 0,
	}
}
