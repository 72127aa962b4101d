// Package tourguide steers a walking biped through an exhibit hall.
//
// The robot follows lidar-detected corridor edges between waypoints, detours
// around obstacles, turns to face each exhibit and raises its arm to present it.
// The body is simulated; the show arm can be a real feetech servo arm.
//
// # Installation
//
//	go install github.com/gwillem/tourguide/cmd/tourguide@latest
//
// # Usage
//
// Write a configuration file and inspect a planned route:
//
//	tourguide init
//	tourguide route --from 0 3
//
// Optionally find and calibrate the show arm:
//
//	tourguide setup
//
// Then start the tour. Press g to begin and a digit to pick an exhibit:
//
//	tourguide run
//	tourguide run --headless --fast --select 3 --select 0
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/tourguide: CLI with run, route, init and setup commands
//   - pkg/geometry: Points, angles and the line-of-sight test
//   - pkg/route: Route templates and shortcuts between waypoints
//   - pkg/nav: Edge tracking and obstacle detours
//   - pkg/tour: The tour state machine
//   - pkg/control: Control loop, keys and fall recovery
//   - pkg/sim: Simulated biped body and lidar
//   - pkg/robot: Show arm, calibration and configuration
//   - pkg/logging: Logger construction
package tourguide
