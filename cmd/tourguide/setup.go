package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/gwillem/tourguide/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Servo IDs of the show arm
const (
	firstServoID = 1
	lastServoID  = 3
)

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Tour Guide Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		return err
	}

	// Step 1: Find the show arm
	port := scanForArm()
	if port == "" {
		fmt.Println("No show arm identified. The tour guide keeps using the simulated arm.")
		return nil
	}

	// Step 2: Calibrate it
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Calibrating Show Arm ━━━"))
	fmt.Println()
	cal, err := calibrateArm(port)
	if err != nil {
		return err
	}

	cfg.Arm = robot.ArmConfig{Port: port, Calibration: cal}
	if err := cfg.SaveTo(opts.Config); err != nil {
		return errors.Wrap(err, "save config")
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start the tour with: " + headerStyle.Render("tourguide run"))
	return nil
}

type armInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
}

// scanForArm returns the port of the arm the user picks, or "" when none is picked.
func scanForArm() string {
	fmt.Println("Scanning for servo buses...")
	fmt.Println()

	arms := findArms()
	if len(arms) == 0 {
		fmt.Println("No show arm found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		return ""
	}

	fmt.Printf("Found %d candidate(s). Let's identify them...\n\n", len(arms))

	picked := ""
	for _, arm := range arms {
		if picked != "" {
			arm.bus.Close()
			continue
		}
		if identifyArmWithWiggle(arm) {
			picked = arm.port
		}
	}
	return picked
}

func findArms() []armInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var arms []armInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, servos, err := connectToArm(port)
		if err != nil {
			continue
		}
		fmt.Printf("  Found show arm candidate on %s\n", port)
		arms = append(arms, armInfo{port: port, servos: servos, bus: bus})
	}
	return arms
}

func isShowArm(servos []feetech.FoundServo) bool {
	if len(servos) != lastServoID-firstServoID+1 {
		return false
	}
	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}
	for i := firstServoID; i <= lastServoID; i++ {
		if !ids[i] {
			return false
		}
	}
	return true
}

func connectToArm(port string) (*feetech.Bus, []feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	servos, err := bus.Scan(ctx, firstServoID, lastServoID)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	if !isShowArm(servos) {
		bus.Close()
		return nil, nil, errors.Errorf("not a show arm (expected servos with IDs %d-%d)", firstServoID, lastServoID)
	}
	return bus, servos, nil
}

// identifyArmWithWiggle moves the shoulder a little and asks whether that was the show arm.
func identifyArmWithWiggle(arm armInfo) bool {
	defer arm.bus.Close()

	ctx := context.Background()

	var servo *feetech.Servo
	for _, s := range arm.servos {
		if s.ID == firstServoID {
			servo = feetech.NewServo(arm.bus, s.ID, s.Model)
			break
		}
	}
	if servo == nil {
		return false
	}

	originalPos, err := servo.Position(ctx)
	if err != nil {
		fmt.Printf("  Error reading position: %v\n", err)
		return false
	}
	if err := servo.Enable(ctx); err != nil {
		fmt.Printf("  Error enabling servo: %v\n", err)
		return false
	}

	fmt.Printf("\n  Wiggling arm on %s...\n", arm.port)

	wiggleAmount := 30
	moveTimeMs := 500
	settle := time.Duration(moveTimeMs+100) * time.Millisecond
	for _, pos := range []int{originalPos + wiggleAmount, originalPos - wiggleAmount, originalPos} {
		servo.SetPositionWithTime(ctx, pos, moveTimeMs)
		time.Sleep(settle)
	}
	servo.Disable(ctx)

	var role string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Is the show arm on %s?", arm.port)).
				Description("The arm that just wiggled").
				Options(
					huh.NewOption("Yes, use it for the show gesture", "show"),
					huh.NewOption("Skip this one", "skip"),
				).
				Value(&role),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return role == "show"
}

func calibrateArm(port string) (robot.Calibration, error) {
	fmt.Printf("Calibrating show arm on %s\n", port)
	fmt.Println()

	bus, servos, err := connectToArm(port)
	if err != nil {
		return nil, errors.Wrap(err, "connect to arm")
	}
	defer bus.Close()

	servoMap := make(map[int]*feetech.Servo)
	for _, s := range servos {
		servoMap[s.ID] = feetech.NewServo(bus, s.ID, s.Model)
	}

	// Let the arm move freely
	ctx := context.Background()
	for _, servo := range servoMap {
		servo.Disable(ctx)
	}

	motors := robot.AllMotors()

	// The hanging arm defines zero
	waitForUser("Let the arm hang straight down, then continue.")
	offsets := make(map[robot.MotorName]int)
	curPositions := make(map[robot.MotorName]int)
	minPositions := make(map[robot.MotorName]int)
	maxPositions := make(map[robot.MotorName]int)
	for i, motorName := range motors {
		pos, err := servoMap[i+firstServoID].Position(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", motorName)
		}
		offsets[motorName] = pos - 2048
		curPositions[motorName] = pos
		minPositions[motorName] = pos
		maxPositions[motorName] = pos
	}

	fmt.Println(subHeaderStyle.Render("Record range of motion"))
	fmt.Println("Move each joint to its minimum AND maximum positions.")
	fmt.Println("Make sure to pass through the raised show pose.")
	fmt.Println()

	model := newCalibrationModel(motors, servoMap, curPositions, minPositions, maxPositions)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, errors.Wrap(err, "run calibration")
	}
	cm := finalModel.(calibrationModel)

	calibration := make(robot.Calibration, len(motors))
	for i, motorName := range motors {
		calibration[motorName] = robot.MotorCalibration{
			ID:           i + firstServoID,
			HomingOffset: offsets[motorName],
			RangeMin:     cm.minPositions[motorName],
			RangeMax:     cm.maxPositions[motorName],
		}
	}

	fmt.Println()
	fmt.Println("Show arm calibrated.")
	return calibration, nil
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
}

// Calibration TUI model
type calibrationModel struct {
	motors       []robot.MotorName
	servoMap     map[int]*feetech.Servo
	curPositions map[robot.MotorName]int
	minPositions map[robot.MotorName]int
	maxPositions map[robot.MotorName]int
	quitting     bool
}

type tickMsg time.Time

func newCalibrationModel(
	motors []robot.MotorName,
	servoMap map[int]*feetech.Servo,
	curPositions, minPositions, maxPositions map[robot.MotorName]int,
) calibrationModel {
	return calibrationModel{
		motors:       motors,
		servoMap:     servoMap,
		curPositions: curPositions,
		minPositions: minPositions,
		maxPositions: maxPositions,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		for i, motorName := range m.motors {
			pos, err := m.servoMap[i+firstServoID].Position(ctx)
			if err != nil {
				continue
			}
			m.curPositions[motorName] = pos
			m.minPositions[motorName] = min(m.minPositions[motorName], pos)
			m.maxPositions[motorName] = max(m.maxPositions[motorName], pos)
		}
		return m, tick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableMotorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, len(m.motors))
	ranges := make([]int, 0, len(m.motors))
	for _, motorName := range m.motors {
		rangeSize := m.maxPositions[motorName] - m.minPositions[motorName]
		ranges = append(ranges, rangeSize)
		rows = append(rows, []string{
			string(motorName),
			fmt.Sprintf("%d", m.curPositions[motorName]),
			fmt.Sprintf("%d", m.minPositions[motorName]),
			fmt.Sprintf("%d", m.maxPositions[motorName]),
			fmt.Sprintf("%d", rangeSize),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "Current", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableMotorStyle
			case 1:
				return tableCurrentStyle
			case 4:
				// The show pose needs well over a quarter turn on every joint.
				if row >= 0 && row < len(ranges) && ranges[row] > 1500 {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	return t.Render() + "\n\n" + dimStyle.Render("Press Enter when done")
}
