// Package route turns an ordered list of waypoints into a dense, queryable
// route.
/*

A route (a "circuit") is built once from authored waypoints and a Config.
Building produces two things:

   - a distance table, mapping each waypoint index to the cumulative length
     walked from waypoint 0, wrapping once past the last waypoint
   - a sequence of curve points, the positions an agent actually drives to

Three interpolation modes are supported:

   Plain            the waypoint positions verbatim
   InternalRounded  every corner is cut by a quadratic Bézier curve, starting
                    EntryDistance before and ending ExitDistance after the corner
   ExternalSpline   a Catmull-Rom spline through all waypoints, sampled at
                    CurveSmoothing evenly spaced distances

Usage

Clients build a circuit with a kind of builder pattern:

   c, err := route.New(cfg).
      Waypoint("gate", circuit.V(0, 0, 0)).
      Waypoint("mill", circuit.V(10, 0, 0)).
      Waypoint("pond", circuit.V(10, 0, 10)).
      Build()

After Build() the circuit is immutable. Its curve points are handed to a
follower, its sampler answers distance queries:

   pt := c.GetRoutePoint(12.5) // position and direction 12.5 units along

Degenerate circuits (less than two waypoints, or a route of length 0) build
without error but have no curve points. Callers check for this with
HasRoute() before starting an agent on it.

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package route
