// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package population

import "github.com/goki/ki/kit"

// CompType is the anatomical tag of a compartment: soma, axon,
// apical dendrite, or basal dendrite. Class parameter styles (passive
// and ion CSV rows) key off of this type.
type CompType int32

// The compartment types. swcType maps the SWC type codes onto them;
// note that SWC code 3 (dendrite) precedes code 4 (apical), the
// reverse of the order here.
const (
	Soma CompType = iota
	Axon
	Apical
	Dendrite

	CompTypeN
)

var KiT_CompType = kit.Enums.AddEnum(CompTypeN, kit.NotBitFlag, nil)

func (ev CompType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *CompType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }
