// Package skewt implements the skew-T log-P coordinate transform and the
// structural isopleth families drawn behind every sounding.
//
// # Coordinate system
//
// Physical space is (pressure hPa, temperature °C). Screen space is a skewed
// log-pressure plane: the vertical axis is -ln(pressure), scaled so the
// configured pressure range [PTop, PBottom] maps onto [0, Height] with y
// increasing upward (y = 0 at PBottom, y = Height at PTop); the horizontal
// axis is temperature plus tan(rotation) times the screen height, so
// isotherms tilt to the right by the configured rotation angle. The mapping
// is analytic in both directions: [Transform.ToPhysical] is the exact
// inverse of [Transform.ToScreen], not an iterative approximation, and the
// round trip is testable to 1e-6.
//
// [ScreenPoint] values are produced only by the transform. Components that
// need screen placement (barbs, polyline projection) go through a Transform
// rather than constructing coordinates themselves.
//
// # Isopleths
//
// Three reference families are generated as polylines in physical space,
// independent of any particular sounding:
//
//   - Dry adiabats: closed form from the potential temperature relation.
//   - Moist pseudoadiabats: no closed form; each curve is the solution of
//     the saturation-ascent ODE, integrated with fixed-step RK4 in
//     log-pressure. The step is chosen so curves agree with a reference
//     solution within 0.1 °C at any sampled pressure.
//   - Mixing-ratio lines: closed-form inversion of the shared saturation
//     vapor pressure formula.
//
// All three go through pkg/thermo for saturation, which is what keeps the
// families mutually consistent with the parcel solver.
package skewt
