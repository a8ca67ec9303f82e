package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cryguy/jsrun/internal/core"
)

// hostGlobal is the temporary global the dispatcher is registered under.
// The install script captures it in a closure and deletes it, so scripts
// only ever see the named bindings.
const hostGlobal = "__jsrun_host"

// consoleCall is the internal call name used by console methods.
const consoleCall = "__console"

// installJS defines every binding as a frozen global function that funnels
// through the captured dispatcher. Arguments are converted with String().
// Replies are tagged: 'e' carries an error message to throw, 'v' carries
// the JSON result or nothing for undefined.
const installJS = `
(function(hostName, names, withConsole) {
	var host = globalThis[hostName];
	delete globalThis[hostName];
	var toStr = String, stringify = JSON.stringify, parse = JSON.parse;

	function invoke(name, args) {
		var strs = [];
		for (var i = 0; i < args.length; i++) {
			strs.push(toStr(args[i]));
		}
		var out = host(stringify({name: name, args: strs}));
		if (out.charAt(0) === 'e') throw new TypeError(out.slice(1));
		out = out.slice(1);
		return out === '' ? undefined : parse(out);
	}

	for (var i = 0; i < names.length; i++) {
		(function(name) {
			Object.defineProperty(globalThis, name, {
				value: function() { return invoke(name, arguments); },
				writable: false, enumerable: false, configurable: false
			});
		})(names[i]);
	}

	if (withConsole) {
		var levels = ['log', 'info', 'warn', 'error', 'debug'];
		var con = {};
		for (var j = 0; j < levels.length; j++) {
			(function(lvl) {
				con[lvl] = function() {
					var parts = [];
					for (var k = 0; k < arguments.length; k++) {
						parts.push(toStr(arguments[k]));
					}
					invoke('` + consoleCall + `', [lvl, parts.join(' ')]);
				};
			})(levels[j]);
		}
		Object.freeze(con);
		Object.defineProperty(globalThis, 'console', {
			value: con, writable: false, enumerable: false, configurable: false
		});
	}
})(%q, %s, %t);
`

// Install populates the runtime's global scope with the registry's
// bindings for one session. It must run before any user source is
// compiled against rt.
func Install(ctx context.Context, rt core.JSRuntime, reg *Registry, s *core.Session) error {
	d := &dispatcher{ctx: ctx, reg: reg, session: s}
	if err := rt.RegisterFunc(hostGlobal, d.reply); err != nil {
		return fmt.Errorf("registering host dispatcher: %w", err)
	}

	names, err := json.Marshal(reg.Names())
	if err != nil {
		return fmt.Errorf("encoding binding names: %w", err)
	}
	if err := rt.Eval(fmt.Sprintf(installJS, hostGlobal, names, reg.Console())); err != nil {
		return fmt.Errorf("installing host bindings: %w", err)
	}
	return nil
}

type hostCall struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// dispatcher routes calls from one session to the registry.
type dispatcher struct {
	ctx     context.Context
	reg     *Registry
	session *core.Session
}

// reply encodes the result of call for the install script. Errors travel
// in-band so both engines throw the same TypeError.
func (d *dispatcher) reply(payload string) (string, error) {
	out, err := d.call(payload)
	if err != nil {
		return "e" + err.Error(), nil
	}
	return "v" + out, nil
}

func (d *dispatcher) call(payload string) (result string, err error) {
	var c hostCall
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return "", fmt.Errorf("decoding host call: %w", err)
	}

	// A panicking callback must not unwind through the engine.
	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = fmt.Errorf("calling %s: host panic: %v", c.Name, r)
		}
	}()

	if c.Name == consoleCall && d.reg.Console() {
		args := Args(c.Args)
		d.session.AddLog(args.Get(0), args.Get(1))
		return "", nil
	}

	fn, ok := d.reg.Lookup(c.Name)
	if !ok {
		return "", fmt.Errorf("calling %s: %w", c.Name, core.ErrUnknownBinding)
	}
	v, err := fn(d.ctx, d.session, Args(c.Args))
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", c.Name, err)
	}
	return encodeResult(v)
}

func encodeResult(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding host result: %w", err)
	}
	return string(data), nil
}
