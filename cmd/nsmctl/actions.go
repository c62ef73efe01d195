package main

import (
	"fmt"
	"io/ioutil"
	"sort"
	"strconv"

	"github.com/b2slc/slowcontrol/src/client"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	cli "gopkg.in/urfave/cli.v1"
)

func dial(c *cli.Context) (*client.Client, error) {
	return client.Dial(
		c.GlobalString(HubFlag.Name),
		"nsmctl",
		c.GlobalDuration(TimeoutFlag.Name),
		newLogger(c),
	)
}

func checkArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return cli.NewExitError(fmt.Sprintf("usage: %s %s", c.Command.HelpName, c.Command.ArgsUsage), 2)
	}
	return nil
}

func send(c *cli.Context) error {
	if err := checkArgs(c, 2); err != nil {
		return err
	}
	args := c.Args()

	params := []int32{}
	for _, a := range args[2:] {
		p, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("invalid parameter %q", a), 2)
		}
		params = append(params, int32(p))
	}
	msg := nsm.NewMessage(args.Get(1), params...)
	if text := c.String(TextFlag.Name); text != "" {
		msg = msg.WithText(text)
	}

	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	resp, err := cl.Request(args.Get(0), msg)
	if err != nil {
		return err
	}
	fmt.Println(resp.Request(), resp.Params(), resp.Text())
	if resp.Command() == nsm.Error || resp.Command() == nsm.Fatal {
		return cli.NewExitError("", 1)
	}
	return nil
}

func state(c *cli.Context) error {
	if err := checkArgs(c, 1); err != nil {
		return err
	}

	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	s, err := cl.State(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

func get(c *cli.Context) error {
	if err := checkArgs(c, 2); err != nil {
		return err
	}

	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	v, err := cl.Get(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func set(c *cli.Context) error {
	if err := checkArgs(c, 4); err != nil {
		return err
	}
	args := c.Args()

	typ := vars.TypeFromLabel(args.Get(2))
	if typ == vars.InvalidType {
		return cli.NewExitError(fmt.Sprintf("invalid type %q", args.Get(2)), 2)
	}
	v, err := vars.ParseValue(args.Get(1), typ, args.Get(3))
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	cur, err := cl.Set(args.Get(0), v)
	if err != nil {
		return err
	}
	fmt.Println(cur)
	return nil
}

func list(c *cli.Context) error {
	if err := checkArgs(c, 1); err != nil {
		return err
	}

	cl, err := dial(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	values, err := cl.List(c.Args().First())
	if err != nil {
		return err
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

func openStore(c *cli.Context) (*dbconfig.BadgerStore, error) {
	return dbconfig.NewBadgerStore(c.GlobalString(DBFlag.Name))
}

func configImport(c *cli.Context) error {
	if err := checkArgs(c, 1); err != nil {
		return err
	}

	data, err := ioutil.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	objs, err := dbconfig.ParseYAML(data)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, obj := range objs {
		if err := store.Put(obj); err != nil {
			return err
		}
		fmt.Printf("%s/%s: %d keys\n", obj.Node, obj.Config, len(obj.Keys()))
	}
	return nil
}

func configShow(c *cli.Context) error {
	if err := checkArgs(c, 2); err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	obj, err := store.Get(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	fields := obj.Flatten()
	for _, k := range obj.Keys() {
		fmt.Printf("%s: %s\n", k, fields[k].Format())
	}
	return nil
}

func configList(c *cli.Context) error {
	if err := checkArgs(c, 1); err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.List(c.Args().First())
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
