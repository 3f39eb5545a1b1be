package component

import "github.com/l1jgo/scriptworld/internal/core/typereg"

// Register records every component and resource type scripts may address.
func Register(r *typereg.Registry) error {
	regs := []func() error{
		reg[Transform](r, typereg.AsComponent(), typereg.WithDefault(func() Transform {
			return Transform{Scale: Vec2{X: 1, Y: 1}}
		})),
		reg[Velocity](r, typereg.AsComponent(), typereg.ZeroDefault()),
		reg[Name](r, typereg.AsComponent(), typereg.ZeroDefault()),
		reg[Health](r, typereg.AsComponent(), typereg.WithDefault(func() Health {
			return Health{Current: 100, Max: 100}
		})),
		reg[Tag](r, typereg.AsComponent(), typereg.ZeroDefault()),
		// Link components have no default: attaching goes through the hierarchy API.
		reg[Parent](r, typereg.AsComponent()),
		reg[Children](r, typereg.AsComponent()),
		reg[Clock](r, typereg.AsResource()),
		reg[Gravity](r, typereg.AsResource(), typereg.ZeroDefault()),
		reg[Vec2](r),
	}
	for _, fn := range regs {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func reg[T any](r *typereg.Registry, opts ...typereg.Option) func() error {
	return func() error {
		_, err := typereg.Register[T](r, opts...)
		return err
	}
}
