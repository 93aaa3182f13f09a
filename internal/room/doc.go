// Package room tracks which participants are connected to which project.
//
// A room is created on the first Join for a project and removed when its last
// participant leaves. Membership is memory-resident; every process builds its
// own Registry and passes it to the components that need it.
package room
