// Package view connects element trees to native rendering surfaces.
//
// A Runtime owns a Driver, which pumps the platform event loop on the
// goroutine that called Run, and a single host goroutine that runs the
// entry function and then every callback and posted task in FIFO order.
// Host code never runs on the loop goroutine.
//
//	rt, err := view.NewRuntime(view.WithDriver(drv))
//	if err != nil {
//	    return err
//	}
//	return rt.Run(func() {
//	    v, _ := rt.NewView(view.Spec{Title: "Main", Width: 800, Height: 600})
//	    v.Fill(el.VFlex(el.Button("ok", "OK")))
//	    ok, _ := v.Lookup("ok")
//	    ok.OnClick(func(view.Event) { rt.Terminate() })
//	})
//
// # Replacement
//
// Fill replaces the whole document. Every identity and callback of the
// previous document is retired in the same step, so handles obtained
// before a Fill fail with joerr.ErrUnknownIdentity and events from the
// old document are dropped.
package view
