// Package lunarlander provides a Box2D implementation of the Lunar
// Lander environment with discrete actions.
//
// An agent flies a ship inside a bounded viewport. At the bottom of
// the viewport is the moon with a horizontal landing pad at its
// centre. The agent fires the main or one of two orientation engines
// to land the ship gently on the pad.
//
// State observations are 8-dimensional vectors with the following
// features in the following order:
//
//	1. The x distance from the lander to the centre of the viewport,
//	   normalized to [-1, 1]
//	2. The y distance from the lander to the landing pad, normalized
//	   to approximately [0, 1]
//	3. The x velocity of the lander
//	4. The y velocity of the lander
//	5. The angle of the lander, normalized to [-π, π]
//	6. The angular velocity of the lander
//	7. Whether the left leg has contact with the ground (0 or 1)
//	8. Whether the right leg has contact with the ground (0 or 1)
//
// Actions are discrete in {0, 1, 2, 3}: do nothing, fire the left
// orientation engine, fire the main engine, fire the right orientation
// engine.
//
// More information on the Lunar Lander environment can be found at
// https://gym.openai.com/envs/LunarLander-v2/. Unlike the OpenAI Gym
// implementation, a boundary is placed around the viewport so the
// lander cannot leave it, and the lander angle is normalized to
// [-π, π].
package lunarlander

import (
	"fmt"
	"image/color"
	"math"

	"golang.org/x/exp/rand"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/timestep"
)

const (
	FPS float64 = 50

	// Scale adjusts the speed of the game as well as the forces
	Scale float64 = 30.0

	XGravity float64 = 0.0
	YGravity float64 = -10.0

	MainEnginePower float64 = 13.0
	SideEnginePower float64 = 0.6

	LegAway         float64 = 20.0
	LegDown         float64 = 18.0
	LegW            float64 = 2.0
	LegH            float64 = 8.0
	LegSpringTorque float64 = 40.0

	SideEngineHeight float64 = 14.0
	SideEngineAway   float64 = 12.0

	// Chunks is the number of terrain segments along the moon surface
	Chunks int = 11

	ViewportW float64 = 600
	ViewportH float64 = 400

	// Actions
	ActionNoOp       int = 0
	ActionLeftFire   int = 1
	ActionMainFire   int = 2
	ActionRightFire  int = 3
	NumActions       int = 4

	// State observations
	StateObservations int     = 8
	MinAngle          float64 = -math.Pi
	MaxAngle          float64 = math.Pi

	// Box2D limits on velocity: 2.0 units per timestep
	MaxVelocity float64 = 2.0 / (1.0 / FPS)
	MinVelocity float64 = -MaxVelocity

	// Default starting values
	InitialX      float64 = ViewportW / Scale / 2
	InitialY      float64 = (ViewportH - ViewportH/25) / Scale
	InitialRandom float64 = 1000.0 // Set 1500 to make the game harder
)

// LanderPoly is the hull of the ship in pixel coordinates
var LanderPoly = [][2]float64{
	{-14, 17},
	{-17, 0},
	{-17, -10},
	{17, -10},
	{17, 0},
	{14, 17},
}

// lunarLander holds the Box2D world of the environment. Rewards and
// episode termination are delegated to the Task.
type lunarLander struct {
	environment.Task

	world box2d.B2World

	boundary       []*box2d.B2Body
	boundaryColour color.Color
	xBounds        r1.Interval
	yBounds        r1.Interval

	moon         *box2d.B2Body
	moonVertices [][2]float64
	moonShade    color.Color
	skyShade     color.Color

	lander        *box2d.B2Body
	landerColour  color.Color
	legs          []*box2d.B2Body
	legColour     color.Color

	leg1GroundContact bool
	leg2GroundContact bool

	helipadX1 float64
	helipadX2 float64
	helipadY  float64

	gameOver bool
	rng      distuv.Uniform

	angleBounds    r1.Interval
	velocityBounds r1.Interval

	discount float64
	prevStep timestep.TimeStep
	mPower   float64
	sPower   float64
}

// New returns a new discrete-action lunar lander environment and the
// first timestep of the first episode. The task determines rewards and
// episode termination.
func New(task environment.Task, discount float64,
	seed uint64) (environment.Environment, timestep.TimeStep, error) {
	if discount < 0 || discount > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("lunarlander: discount "+
			"must be in [0, 1], got %v", discount)
	}

	l := &lunarLander{}
	l.world = box2d.MakeB2World(box2d.B2Vec2{X: XGravity, Y: YGravity})

	l.boundaryColour = color.RGBA{R: 255, G: 166, B: 0, A: 255}
	l.moonVertices = make([][2]float64, 0, 2*(Chunks-1))
	l.moonShade = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	l.skyShade = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	l.landerColour = color.RGBA{R: 128, G: 102, B: 230, A: 255}
	l.legColour = color.RGBA{R: 77, G: 77, B: 128, A: 255}

	src := rand.NewSource(seed)
	l.rng = distuv.Uniform{Min: 0, Max: 1.0, Src: src}
	l.discount = discount

	l.angleBounds = r1.Interval{Min: MinAngle, Max: MaxAngle}
	l.velocityBounds = r1.Interval{Min: MinVelocity, Max: MaxVelocity}
	l.yBounds = r1.Interval{Min: ViewportH / Scale / 2, Max: InitialY}
	l.xBounds = r1.Interval{Min: 0.05 * ViewportW / Scale,
		Max: 0.95 * ViewportW / Scale}

	if t, ok := task.(lunarLanderTask); ok {
		t.registerEnv(l)
	}
	l.Task = task

	step := l.Reset()
	return l, step, nil
}

// GroundContact returns which of the two legs touch the ground
func (l *lunarLander) GroundContact() (bool, bool) {
	return l.leg1GroundContact, l.leg2GroundContact
}

// IsGameOver returns whether the ship hull has touched the moon
func (l *lunarLander) IsGameOver() bool {
	return l.gameOver
}

// IsAwake returns whether the ship is still moving. A ship at rest has
// landed.
func (l *lunarLander) IsAwake() bool {
	return l.lander.IsAwake()
}

// MPower returns the main engine power spent on the last step
func (l *lunarLander) MPower() float64 {
	return l.mPower
}

// SPower returns the orientation engine power spent on the last step
func (l *lunarLander) SPower() float64 {
	return l.sPower
}

// destroy tears down all Box2D bodies between episodes
func (l *lunarLander) destroy() {
	if l.moon == nil {
		return
	}
	l.world.SetContactListener(nil)

	l.world.DestroyBody(l.moon)
	l.moon = nil

	l.world.DestroyBody(l.lander)
	l.lander = nil

	for _, leg := range l.legs {
		l.world.DestroyBody(leg)
	}
	for _, bound := range l.boundary {
		l.world.DestroyBody(bound)
	}
}

// Reset resets the environment, recreating the terrain and ship, and
// returns the starting timestep
func (l *lunarLander) Reset() timestep.TimeStep {
	l.destroy()
	l.world.SetContactListener(newContactDetector(l))
	l.gameOver = false
	l.mPower = 0.0
	l.sPower = 0.0

	if t, ok := l.Task.(lunarLanderTask); ok {
		t.reset()
	}

	start := l.Start()
	if err := validateStart(start, l.xBounds, l.yBounds); err != nil {
		panic(fmt.Sprintf("reset: %v", err))
	}

	W := ViewportW / Scale
	H := ViewportH / Scale

	// Boundary walls keep the ship inside the viewport
	l.boundary = make([]*box2d.B2Body, 4)
	corners := [5]box2d.B2Vec2{
		box2d.MakeB2Vec2(0.0, 0.0),
		box2d.MakeB2Vec2(0.0, H),
		box2d.MakeB2Vec2(W, H),
		box2d.MakeB2Vec2(W, 0.0),
		box2d.MakeB2Vec2(0.0, 0.0),
	}
	for i := 0; i < 4; i++ {
		boundsDef := box2d.NewB2BodyDef()
		boundsDef.Type = box2d.B2BodyType.B2_staticBody
		l.boundary[i] = l.world.CreateBody(boundsDef)

		boundsShape := box2d.NewB2EdgeShape()
		boundsShape.Set(corners[i], corners[i+1])

		boundsFix := box2d.MakeB2FixtureDef()
		boundsFix.Shape = boundsShape
		l.boundary[i].CreateFixtureFromDef(&boundsFix)
	}

	// Terrain heights, with a flat landing pad in the middle
	height := make([]float64, Chunks+1)
	for i := range height {
		height[i] = l.rng.Rand() * (H / 2.0)
	}
	chunkX := make([]float64, Chunks)
	for i := 0; i < Chunks; i++ {
		chunkX[i] = float64(i) * (W / float64(Chunks-1))
	}

	l.helipadX1 = chunkX[Chunks/2-1]
	l.helipadX2 = chunkX[Chunks/2+1]
	l.helipadY = H / 4
	for i := Chunks/2 - 2; i <= Chunks/2+2; i++ {
		height[i] = l.helipadY
	}

	smoothY := make([]float64, Chunks)
	for i := 0; i < Chunks; i++ {
		if i == 0 {
			smoothY[i] = 0.33 * (height[Chunks-1] + height[i] + height[i+1])
		} else {
			smoothY[i] = 0.33 * (height[i-1] + height[i] + height[i+1])
		}
	}

	// Moon
	moonDef := box2d.NewB2BodyDef()
	moonDef.Type = box2d.B2BodyType.B2_staticBody
	moonDef.Position.Set(0, 0)
	l.moon = l.world.CreateBody(moonDef)

	moonShape := box2d.NewB2EdgeShape()
	moonShape.Set(*box2d.NewB2Vec2(0.0, 0.0), *box2d.NewB2Vec2(W, 0.0))
	moonFixture := box2d.MakeB2FixtureDef()
	moonFixture.Shape = moonShape
	l.moon.CreateFixtureFromDef(&moonFixture)

	l.moonVertices = l.moonVertices[:0]
	for i := 0; i < Chunks-1; i++ {
		p1 := [2]float64{chunkX[i], smoothY[i]}
		p2 := [2]float64{chunkX[i+1], smoothY[i+1]}
		l.moonVertices = append(l.moonVertices, p1, p2)

		edge := box2d.NewB2EdgeShape()
		edge.M_vertex1 = box2d.MakeB2Vec2(p1[0], p1[1])
		edge.M_vertex2 = box2d.MakeB2Vec2(p2[0], p2[1])

		edgeFixture := box2d.MakeB2FixtureDef()
		edgeFixture.Shape = edge
		edgeFixture.Density = 0.0
		edgeFixture.Friction = 0.1
		l.moon.CreateFixtureFromDef(&edgeFixture)
	}

	// Ship hull
	initialX := start.AtVec(0)
	initialY := start.AtVec(1)
	landerDef := box2d.MakeB2BodyDef()
	landerDef.Type = box2d.B2BodyType.B2_dynamicBody
	landerDef.Position = box2d.MakeB2Vec2(initialX, initialY)
	landerDef.Angle = 0.0
	l.lander = l.world.CreateBody(&landerDef)

	landerShape := box2d.NewB2PolygonShape()
	vertices := make([]box2d.B2Vec2, len(LanderPoly))
	for i := range LanderPoly {
		vertices[i] = box2d.MakeB2Vec2(
			LanderPoly[i][0]/Scale,
			LanderPoly[i][1]/Scale,
		)
	}
	landerShape.Set(vertices, len(vertices))

	landerFix := box2d.MakeB2FixtureDef()
	landerFix.Shape = landerShape
	landerFix.Density = 5.0
	landerFix.Friction = 0.1
	landerFix.Restitution = 0.0
	filter := box2d.MakeB2Filter()
	filter.CategoryBits = 0x0010
	filter.MaskBits = 0x001
	landerFix.Filter = filter
	l.lander.CreateFixtureFromDef(&landerFix)

	// Random initial kick
	initialRandom := start.AtVec(2)
	initialForce := box2d.MakeB2Vec2(
		l.rng.Rand()*2*initialRandom-initialRandom,
		l.rng.Rand()*2*initialRandom-initialRandom,
	)
	l.lander.ApplyForceToCenter(initialForce, true)

	// Legs, attached to the hull with sprung revolute joints
	l.legs = make([]*box2d.B2Body, 0, 2)
	for _, i := range []float64{-1.0, 1.0} {
		legDef := box2d.NewB2BodyDef()
		legDef.Type = box2d.B2BodyType.B2_dynamicBody
		legDef.Position = box2d.MakeB2Vec2(initialX-i*LegAway/Scale, initialY)
		legDef.Angle = i * 0.05

		leg := l.world.CreateBody(legDef)
		l.legs = append(l.legs, leg)

		legShape := box2d.NewB2PolygonShape()
		legShape.SetAsBox(LegW/Scale, LegH/Scale)

		legFix := box2d.MakeB2FixtureDef()
		legFix.Density = 1.0
		legFix.Restitution = 0.0
		legFix.Shape = legShape
		filter := box2d.MakeB2Filter()
		filter.CategoryBits = 0x0020
		filter.MaskBits = 0x001
		legFix.Filter = filter
		leg.CreateFixtureFromDef(&legFix)

		rjd := box2d.MakeB2RevoluteJointDef()
		rjd.BodyA = l.lander
		rjd.BodyB = leg
		rjd.LocalAnchorA = box2d.MakeB2Vec2(0.0, 0.0)
		rjd.LocalAnchorB = box2d.MakeB2Vec2(i*LegAway/Scale, LegDown/Scale)
		rjd.EnableMotor = true
		rjd.EnableLimit = true
		rjd.MaxMotorTorque = LegSpringTorque
		rjd.MotorSpeed = 0.7 * i
		if i < 0 {
			rjd.LowerAngle = 0.9 - 0.5
			rjd.UpperAngle = 0.9
		} else {
			rjd.LowerAngle = -0.9
			rjd.UpperAngle = -0.9 + 0.5
		}
		l.world.CreateJoint(&rjd)
	}
	l.leg1GroundContact = false
	l.leg2GroundContact = false

	step := timestep.New(timestep.First, 0.0, l.discount, l.observe(), 0)
	l.prevStep = step

	return step
}

// Step takes a single environmental step given a discrete action and
// returns the next timestep and whether it is the last in the episode
func (l *lunarLander) Step(action mat.Vector) (timestep.TimeStep, bool,
	error) {
	if action.Len() != 1 {
		return timestep.TimeStep{}, true, fmt.Errorf("step: actions must be "+
			"1-dimensional, got %v dimensions", action.Len())
	}

	var mainThrottle, sideThrottle float64
	switch a := int(action.AtVec(0)); a {
	case ActionNoOp:

	case ActionLeftFire:
		sideThrottle = -1.0

	case ActionMainFire:
		mainThrottle = 1.0

	case ActionRightFire:
		sideThrottle = 1.0

	default:
		return timestep.TimeStep{}, true, fmt.Errorf("step: illegal action "+
			"selection, expected action ϵ [0, %v) but got action = %v",
			NumActions, a)
	}

	// Engine plume dispersion noise
	tip := [2]float64{
		math.Sin(l.lander.GetAngle()),
		math.Cos(l.lander.GetAngle()),
	}
	side := [2]float64{-tip[1], tip[0]}
	var dispersion [2]float64
	for i := range dispersion {
		dispersion[i] = l.rng.Rand() / Scale
	}

	// Main engine
	l.mPower = 0.0
	if mainThrottle > 0.0 {
		l.mPower = 1.0

		ox := tip[0]*(4.0/Scale+2.0*dispersion[0]) + side[0]*dispersion[1]
		oy := -tip[1]*(4.0/Scale+2.0*dispersion[0]) - side[1]*dispersion[1]

		impulsePos := box2d.MakeB2Vec2(
			l.lander.GetPosition().X+ox,
			l.lander.GetPosition().Y+oy,
		)
		linearImpulse := box2d.MakeB2Vec2(
			-ox*MainEnginePower*l.mPower,
			-oy*MainEnginePower*l.mPower,
		)
		l.lander.ApplyLinearImpulse(linearImpulse, impulsePos, true)
	}

	// Orientation engines
	l.sPower = 0.0
	if sideThrottle != 0.0 {
		direction := sideThrottle
		l.sPower = 1.0

		ox := tip[0]*dispersion[0] + side[0]*(3.0*dispersion[1]+direction*
			SideEngineAway/Scale)
		oy := -tip[1]*dispersion[0] - side[1]*(3.0*dispersion[1]+direction*
			SideEngineAway/Scale)

		impulsePos := box2d.MakeB2Vec2(
			l.lander.GetPosition().X+ox-tip[0]*17.0/Scale,
			l.lander.GetPosition().Y+oy+tip[1]*SideEngineHeight/Scale,
		)
		linearImpulse := box2d.MakeB2Vec2(
			-ox*SideEnginePower*l.sPower,
			-oy*SideEnginePower*l.sPower,
		)
		l.lander.ApplyLinearImpulse(linearImpulse, impulsePos, true)
	}

	l.world.Step(1.0/FPS, 6*int(Scale), 2*int(Scale))

	obs := l.observe()
	reward := l.GetReward(l.prevStep.Observation, action, obs)
	t := timestep.New(timestep.Mid, reward, l.discount, obs,
		l.prevStep.Number+1)
	l.End(&t)

	l.prevStep = t
	return t, t.Last(), nil
}

// observe constructs the state observation from the Box2D world
func (l *lunarLander) observe() mat.Vector {
	pos := l.lander.GetPosition()
	vel := l.lander.GetLinearVelocity()

	var leg1GroundContact, leg2GroundContact float64
	if l.leg1GroundContact {
		leg1GroundContact = 1.0
	}
	if l.leg2GroundContact {
		leg2GroundContact = 1.0
	}

	state := []float64{
		(pos.X - ViewportW/Scale/2.0) / (ViewportW / Scale / 2.0),
		(pos.Y - (l.helipadY + LegDown/Scale)) / (ViewportH/Scale - l.helipadY),
		vel.X * (ViewportW / Scale / 2.0) / FPS,
		vel.Y * (ViewportH / Scale / 2.0) / FPS,
		wrap(l.lander.GetAngle(), l.angleBounds.Min, l.angleBounds.Max),
		20.0 * l.lander.GetAngularVelocity() / FPS,
		leg1GroundContact,
		leg2GroundContact,
	}

	return mat.NewVecDense(StateObservations, state)
}

// CurrentTimeStep returns the last timestep of the environment
func (l *lunarLander) CurrentTimeStep() timestep.TimeStep {
	return l.prevStep
}

// DiscountSpec returns the discount specification of the environment
func (l *lunarLander) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{l.discount})

	return environment.NewSpec(shape, environment.Discount, bound, bound,
		environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (l *lunarLander) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(StateObservations, nil)

	lowerBound := mat.NewVecDense(StateObservations, []float64{
		-1.0,
		0.0,
		l.velocityBounds.Min,
		l.velocityBounds.Min,
		l.angleBounds.Min,
		l.velocityBounds.Min,
		0.0,
		0.0,
	})
	upperBound := mat.NewVecDense(StateObservations, []float64{
		1.0,
		1.0,
		l.velocityBounds.Max,
		l.velocityBounds.Max,
		l.angleBounds.Max,
		l.velocityBounds.Max,
		1.0,
		1.0,
	})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (l *lunarLander) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(ActionNoOp)})
	upperBound := mat.NewVecDense(1, []float64{float64(NumActions - 1)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// contactDetector flags ground contact of the hull and the legs
type contactDetector struct {
	env *lunarLander
}

func newContactDetector(e *lunarLander) *contactDetector {
	return &contactDetector{e}
}

// BeginContact implements the box2d.B2ContactListenerInterface
func (c *contactDetector) BeginContact(contact box2d.B2ContactInterface) {
	// If the hull touches the moon, it's game over: the ship should
	// land on its legs
	if c.env.lander == contact.GetFixtureA().GetBody() ||
		c.env.lander == contact.GetFixtureB().GetBody() {
		c.env.gameOver = true
	}

	if c.env.legs[0] == contact.GetFixtureA().GetBody() ||
		c.env.legs[0] == contact.GetFixtureB().GetBody() {
		c.env.leg1GroundContact = true
	}

	if c.env.legs[1] == contact.GetFixtureA().GetBody() ||
		c.env.legs[1] == contact.GetFixtureB().GetBody() {
		c.env.leg2GroundContact = true
	}
}

// EndContact implements the box2d.B2ContactListenerInterface
func (c *contactDetector) EndContact(contact box2d.B2ContactInterface) {
	if c.env.legs[0] == contact.GetFixtureA().GetBody() ||
		c.env.legs[0] == contact.GetFixtureB().GetBody() {
		c.env.leg1GroundContact = false
	}

	if c.env.legs[1] == contact.GetFixtureA().GetBody() ||
		c.env.legs[1] == contact.GetFixtureB().GetBody() {
		c.env.leg2GroundContact = false
	}
}

func (c *contactDetector) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
}

func (c *contactDetector) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}

// wrap wraps x around the interval [min, max)
func wrap(x, min, max float64) float64 {
	diff := max - min
	for x > max {
		x -= diff
	}
	for x < min {
		x += diff
	}
	return x
}

// validateStart ensures the Starter produced a legal starting state
func validateStart(state mat.Vector, xBounds, yBounds r1.Interval) error {
	if state.Len() != 3 {
		return fmt.Errorf("starting values should be 3-dimensional")
	}

	if state.AtVec(0) > xBounds.Max || state.AtVec(0) < xBounds.Min {
		return fmt.Errorf("x position out of bounds, expected x ϵ (%v, %v) "+
			"but got x = %v", xBounds.Min, xBounds.Max, state.AtVec(0))
	}

	if state.AtVec(1) > yBounds.Max || state.AtVec(1) < yBounds.Min {
		return fmt.Errorf("y position out of bounds, expected y ϵ (%v, %v) "+
			"but got y = %v", yBounds.Min, yBounds.Max, state.AtVec(1))
	}

	return nil
}
